package admirer

import (
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Admirer{}); err != nil {
		return fmt.Errorf("无法迁移admirer表: %w", err)
	}
	fmt.Println("Admirer数据库表迁移成功。")
	return nil
}

// PrimeCachedDB 是admirer模块的初始化总入口。
// 仰慕记录读写全部走SQLite，没有需要预热的Redis镜像。
func PrimeCachedDB() error {
	return migrateDB()
}
