package streak

import (
	"errors"
	"fmt"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// timeNow 可在测试中替换，用于驱动跨天的状态机场景
var timeNow = time.Now

// truncateToDay 将时间截断到UTC的零点，连签判定只关心日期
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordPost 记录一次发帖并推进连签状态机。
// 状态机以 今天 与 LastPostDate 的天数差为键：
//   - 无记录: 创建 current=1, longest=1, total=1
//   - 同一天: 只累计TotalPosts，连签字段不动（防止同日刷帖刷连签）
//   - 昨天:   连签+1，longest取较大值
//   - 其他:   断签，current重置为1，longest不变
//
// 整个读改写在一个带行锁的事务中完成，
// 保证同一会话的并发发帖不会交错出不一致的连签。
func RecordPost(sessionID string) (*RecordResult, error) {
	today := truncateToDay(timeNow())
	var result RecordResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var s Streak
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionID).First(&s).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("无法查询会话 %s 的连签记录: %w", sessionID, err)
			}
			s = Streak{
				SessionID:     sessionID,
				CurrentStreak: 1,
				LongestStreak: 1,
				LastPostDate:  today,
				TotalPosts:    1,
			}
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("无法创建连签记录: %w", err)
			}
			result = RecordResult{Outcome: OutcomeStarted, Streak: s}
			return nil
		}

		lastDay := truncateToDay(s.LastPostDate)
		switch {
		case lastDay.Equal(today):
			s.TotalPosts++
			result.Outcome = OutcomeSameDay
		case lastDay.Equal(today.AddDate(0, 0, -1)):
			s.CurrentStreak++
			if s.CurrentStreak > s.LongestStreak {
				s.LongestStreak = s.CurrentStreak
			}
			s.LastPostDate = today
			s.TotalPosts++
			result.Outcome = OutcomeContinued
		default:
			s.CurrentStreak = 1
			if s.LongestStreak < 1 {
				s.LongestStreak = 1
			}
			s.LastPostDate = today
			s.TotalPosts++
			result.Outcome = OutcomeReset
		}

		if err := tx.Save(&s).Error; err != nil {
			return fmt.Errorf("无法保存连签记录: %w", err)
		}
		result.Streak = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	refreshRankingEntry(&result.Streak)
	return &result, nil
}

// GetStreak 返回会话的连签快照，记录不存在时返回零值状态。
func GetStreak(sessionID string) (*Snapshot, error) {
	var s Streak
	err := database.DB.Where("session_id = ?", sessionID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("无法查询会话 %s 的连签记录: %w", sessionID, err)
	}
	return &Snapshot{
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		LastPostDate:  s.LastPostDate,
		TotalPosts:    s.TotalPosts,
	}, nil
}

// RankedStreak 是连签排行榜的单个条目
type RankedStreak struct {
	SessionID     string
	CurrentStreak int
}

// TopStreaks 返回按当前连签天数降序排列的前limit个会话。
// Redis健康时读镜像，否则回退到SQLite；
// 两条路径的同分次序一致：会话UUID字典序倒序。
func TopStreaks(limit int) ([]RankedStreak, error) {
	if limit <= 0 {
		return []RankedStreak{}, nil
	}

	if database.IsRedisHealthy() {
		zs, err := database.RDB.ZRevRangeWithScores(database.Ctx, RankingKey, 0, int64(limit-1)).Result()
		if err == nil {
			ranked := make([]RankedStreak, 0, len(zs))
			for _, z := range zs {
				ranked = append(ranked, RankedStreak{
					SessionID:     z.Member.(string),
					CurrentStreak: int(z.Score),
				})
			}
			return ranked, nil
		}
		fmt.Printf("警告: 连签排行读取Redis失败，回退SQLite: %v\n", err)
	}

	var rows []Streak
	if err := database.DB.
		Order("current_streak desc").Order("session_id desc").
		Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法从SQLite读取连签排行: %w", err)
	}
	ranked := make([]RankedStreak, 0, len(rows))
	for _, s := range rows {
		ranked = append(ranked, RankedStreak{SessionID: s.SessionID, CurrentStreak: s.CurrentStreak})
	}
	return ranked, nil
}

// refreshRankingEntry 将最新的连签天数写穿到Redis镜像。
// 失败只告警，排行榜由下一次预热修复。
func refreshRankingEntry(s *Streak) {
	if !database.IsRedisHealthy() {
		return
	}
	err := database.RDB.ZAdd(database.Ctx, RankingKey, redis.Z{
		Score:  float64(s.CurrentStreak),
		Member: s.SessionID,
	}).Err()
	if err != nil {
		fmt.Printf("警告: 连签排行镜像写入失败 (session=%s): %v\n", s.SessionID, err)
	}
}
