package content

import (
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Confession{}, &Crush{}, &Spotted{}, &Poll{}); err != nil {
		return fmt.Errorf("无法迁移内容表: %w", err)
	}
	fmt.Println("内容数据库表迁移成功。")
	return nil
}

// WarmupCache 重建发帖频率缓存和精选仓库
func WarmupCache() error {
	if err := RebuildPostLimitCache(); err != nil {
		return err
	}
	if err := InitializeFeaturedRepository(); err != nil {
		return err
	}
	return nil
}

// PrimeCachedDB 是content模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
