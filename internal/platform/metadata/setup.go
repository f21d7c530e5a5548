package metadata

import (
	"fmt"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
)

// PrimeCachedDB 是metadata模块的初始化总入口
func PrimeCachedDB() error {
	if err := database.DB.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	fmt.Println("Metadata数据库表迁移成功。")
	return WarmupCache()
}

// WarmupCache 将SQLite中持久化的镜像水位线预热到Redis。
// 积分事件处理器从这个水位线之后开始补齐事件。
func WarmupCache() error {
	lastID, err := GetLastMirroredEventID()
	if err != nil {
		return err
	}
	if err := database.RDB.Set(database.Ctx, RedisLastMirroredEventIDKey, strconv.FormatUint(uint64(lastID), 10), 0).Err(); err != nil {
		return fmt.Errorf("预热镜像水位线到Redis失败: %w", err)
	}
	fmt.Printf("成功预热镜像水位线到Redis: %d。\n", lastID)
	return nil
}
