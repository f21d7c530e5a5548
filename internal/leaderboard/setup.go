package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/metadata"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Entry{}, &ScoreEvent{}); err != nil {
		return fmt.Errorf("无法迁移leaderboard表: %w", err)
	}
	fmt.Println("Leaderboard数据库表迁移成功。")
	return nil
}

// deleteKeysByPrefix 是一个辅助函数，用于安全地删除一批镜像键
func deleteKeysByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	var cursor uint64
	matchPattern := prefix + "*"
	const batchSize = 500

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, matchPattern, batchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// WarmupCache 从SQLite重建Redis中的全部排行榜镜像。
// 积分桶和事件水位线在同一个数据库事务中读取，
// 保证重建出的镜像与水位线对应同一时刻的数据。
func WarmupCache() error {
	var entries []Entry
	var maxEventID uint

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&entries).Error; err != nil {
			return fmt.Errorf("无法从SQLite读取积分桶: %w", err)
		}
		var latest ScoreEvent
		err := tx.Order("id desc").First(&latest).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return fmt.Errorf("无法读取最新积分事件: %w", err)
		}
		maxEventID = latest.ID
		return nil
	})
	if err != nil {
		return err
	}

	// 先清空旧的镜像键，确保数据一致性
	if err := deleteKeysByPrefix(database.Ctx, database.RDB, "lb:"); err != nil {
		return fmt.Errorf("删除旧的排行榜镜像失败: %w", err)
	}

	pipe := database.RDB.Pipeline()
	for _, e := range entries {
		key := fmt.Sprintf("lb:%s:%s:%s", e.Category, e.Period, bucketKeySuffix(e.PeriodStart))
		pipe.ZAdd(database.Ctx, key, redis.Z{
			Score:  e.Score,
			Member: e.SessionID,
		})
	}
	pipe.Set(database.Ctx, metadata.RedisLastMirroredEventIDKey, strconv.FormatUint(uint64(maxEventID), 10), 0)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热排行榜镜像到Redis失败: %w", err)
	}

	// 重建后的镜像已经包含全部已提交事件，水位线同步推进，
	// 并持久化到metadata表，保证重启后处理器从正确的位置继续
	if err := metadata.SetLastMirroredEventID(database.DB, maxEventID); err != nil {
		return fmt.Errorf("无法持久化镜像水位线: %w", err)
	}
	resetProcessorWatermark(maxEventID)

	fmt.Printf("成功预热 %d 个积分桶到Redis，镜像水位线: %d。\n", len(entries), maxEventID)
	return nil
}

// PrimeCachedDB 是leaderboard模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

// StartScoreProcessor 初始化并启动全局的积分处理器。
// 它接收两个handle来管理两阶段停机。
func StartScoreProcessor(gracefulHandle, forcefulHandle *lifecycle.Handle) error {
	startID, err := metadata.GetLastMirroredEventID()
	if err != nil {
		return fmt.Errorf("无法获取启动Score Processor所需的水位线: %w", err)
	}

	initializeProcessor(startID)
	go startProcessor(gracefulHandle, forcefulHandle)
	return nil
}
