package streak

import (
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Streak{}); err != nil {
		return fmt.Errorf("无法迁移streak表: %w", err)
	}
	fmt.Println("Streak数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载连签数据，重建Redis中的排行镜像
func WarmupCache() error {
	var streaks []Streak
	if err := database.DB.Find(&streaks).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取连签数据: %w", err)
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, RankingKey)
	for _, s := range streaks {
		pipe.ZAdd(database.Ctx, RankingKey, redis.Z{
			Score:  float64(s.CurrentStreak),
			Member: s.SessionID,
		})
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热连签排行到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 条连签数据到Redis。\n", len(streaks))
	return nil
}

// PrimeCachedDB 是streak模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
