package report

import (
	"encoding/json"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

const (
	// CacheKey 是一个 Redis Hash 的键，用于缓存序列化后的参与度报告。
	// Field: 会话的UUID
	// Value: EngagementReport 结构体的JSON序列化字符串
	CacheKey = "report:cache"
)

// GetReportCache 从Redis缓存中获取参与度报告。
func GetReportCache(sessionID string) (*EngagementReport, error) {
	result, err := database.RDB.HGet(database.Ctx, CacheKey, sessionID).Result()
	if err == redis.Nil {
		return nil, nil // 缓存未命中，是正常情况，不返回错误
	}
	if err != nil {
		return nil, err // 其他Redis错误
	}

	var report EngagementReport
	if err := json.Unmarshal([]byte(result), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SetReportCache 将参与度报告存入Redis缓存。
func SetReportCache(report *EngagementReport, expire time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	// 使用Pipeline来原子地设置值和过期时间
	pipe := database.RDB.Pipeline()
	pipe.HSet(database.Ctx, CacheKey, report.SessionID, data)
	pipe.HExpire(database.Ctx, CacheKey, expire, report.SessionID)
	_, err = pipe.Exec(database.Ctx)
	return err
}

// ClearReportCache 清空整个报告缓存，缓存重建时调用。
func ClearReportCache() error {
	return database.RDB.Del(database.Ctx, CacheKey).Err()
}
