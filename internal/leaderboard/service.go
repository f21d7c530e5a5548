package leaderboard

import (
	"fmt"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// timeNow 可在测试中替换，用于固定周期桶的计算
var timeNow = time.Now

// AwardScore 为一个会话在指定类别上加分。
// 一次加分扇出到weekly/monthly/alltime三个桶，三次upsert与一条
// 审计事件在同一个GORM事务中完成：要么三个桶全部反映本次加分，
// 要么一个都不反映。事务提交后，事件交给积分处理器镜像到Redis。
func AwardScore(sessionID string, category Category, delta float64) error {
	if sessionID == "" {
		return fmt.Errorf("加分缺少会话身份")
	}
	if _, ok := ParseCategory(string(category)); !ok {
		return fmt.Errorf("无效的积分类别: %s", category)
	}
	if delta <= 0 {
		return fmt.Errorf("无效的积分增量: %f", delta)
	}

	now := timeNow()
	var event ScoreEvent

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, period := range AllPeriods {
			entry := Entry{
				SessionID:   sessionID,
				Category:    category,
				Period:      period,
				PeriodStart: BucketStart(period, now),
				Score:       delta,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "session_id"}, {Name: "category"},
					{Name: "period"}, {Name: "period_start"},
				},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"score":      gorm.Expr("score + ?", delta),
					"updated_at": now,
				}),
			}).Create(&entry).Error
			if err != nil {
				return fmt.Errorf("无法更新 %s/%s 桶: %w", category, period, err)
			}
		}

		event = ScoreEvent{
			SessionID: sessionID,
			Category:  category,
			Delta:     delta,
			EventTime: now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("无法写入积分事件: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 事务已提交，镜像更新交给单一写入者按事件ID顺序执行
	submitScoreEventToQueue(event)
	return nil
}

// RankedEntry 是排行榜的单个条目（会话UUID + 积分）
type RankedEntry struct {
	SessionID string
	Score     float64
}

// GetRankedEntries 返回指定类别和周期当前桶的完整有序积分集。
// Redis健康时读镜像Sorted Set，否则回退到SQLite；
// 两条路径的同分次序一致：会话UUID字典序倒序。
func GetRankedEntries(category Category, period Period, limit int) ([]RankedEntry, error) {
	if limit <= 0 {
		return []RankedEntry{}, nil
	}

	now := timeNow()
	if database.IsRedisHealthy() {
		zs, err := database.RDB.ZRevRangeWithScores(database.Ctx, MirrorKey(category, period, now), 0, int64(limit-1)).Result()
		if err == nil {
			ranked := make([]RankedEntry, 0, len(zs))
			for _, z := range zs {
				ranked = append(ranked, RankedEntry{
					SessionID: z.Member.(string),
					Score:     z.Score,
				})
			}
			return ranked, nil
		}
		fmt.Printf("警告: 排行榜读取Redis失败，回退SQLite: %v\n", err)
	}

	var rows []Entry
	err := database.DB.
		Where("category = ? AND period = ? AND period_start = ?", category, period, BucketStart(period, now)).
		Order("score desc").Order("session_id desc").
		Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法从SQLite读取排行榜: %w", err)
	}
	ranked := make([]RankedEntry, 0, len(rows))
	for _, e := range rows {
		ranked = append(ranked, RankedEntry{SessionID: e.SessionID, Score: e.Score})
	}
	return ranked, nil
}

// MyRank 描述一个会话在某个桶中的名次
type MyRank struct {
	Rank         int     `json:"rank"` // 1起始；0表示该会话在桶中无积分
	Score        float64 `json:"score"`
	Participants int     `json:"participants"`
}

// GetMyRank 计算指定会话在当前桶中的1起始名次。
// 会话在桶中没有积分时返回 rank=0。
func GetMyRank(sessionID string, category Category, period Period) (*MyRank, error) {
	now := timeNow()

	if database.IsRedisHealthy() {
		key := MirrorKey(category, period, now)
		pipe := database.RDB.Pipeline()
		rankCmd := pipe.ZRevRank(database.Ctx, key, sessionID)
		scoreCmd := pipe.ZScore(database.Ctx, key, sessionID)
		cardCmd := pipe.ZCard(database.Ctx, key)
		_, err := pipe.Exec(database.Ctx)
		// 成员不存在时单条命令返回redis.Nil，Exec也会带回该错误，
		// 因此逐条检查结果而不是直接放弃整个pipeline
		participants := int(cardCmd.Val())
		if rank, rankErr := rankCmd.Result(); rankErr == nil {
			return &MyRank{
				Rank:         int(rank) + 1, // 转换为1起始
				Score:        scoreCmd.Val(),
				Participants: participants,
			}, nil
		}
		if err == nil || cardCmd.Err() == nil {
			return &MyRank{Rank: 0, Score: 0, Participants: participants}, nil
		}
		fmt.Printf("警告: 名次读取Redis失败，回退SQLite: %v\n", err)
	}

	bucketStart := BucketStart(period, now)
	var mine Entry
	err := database.DB.
		Where("session_id = ? AND category = ? AND period = ? AND period_start = ?",
			sessionID, category, period, bucketStart).
		First(&mine).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			var participants int64
			if err := database.DB.Model(&Entry{}).
				Where("category = ? AND period = ? AND period_start = ?", category, period, bucketStart).
				Count(&participants).Error; err != nil {
				return nil, fmt.Errorf("无法统计桶内参与者: %w", err)
			}
			return &MyRank{Rank: 0, Score: 0, Participants: int(participants)}, nil
		}
		return nil, fmt.Errorf("无法查询会话积分: %w", err)
	}

	// 名次 = 比我高分的数量 + 同分但UUID字典序更大的数量 + 1，
	// 与ZREVRANGE的次序完全一致
	var ahead int64
	err = database.DB.Model(&Entry{}).
		Where("category = ? AND period = ? AND period_start = ?", category, period, bucketStart).
		Where("score > ? OR (score = ? AND session_id > ?)", mine.Score, mine.Score, sessionID).
		Count(&ahead).Error
	if err != nil {
		return nil, fmt.Errorf("无法计算名次: %w", err)
	}
	var participants int64
	if err := database.DB.Model(&Entry{}).
		Where("category = ? AND period = ? AND period_start = ?", category, period, bucketStart).
		Count(&participants).Error; err != nil {
		return nil, fmt.Errorf("无法统计桶内参与者: %w", err)
	}

	return &MyRank{
		Rank:         int(ahead) + 1,
		Score:        mine.Score,
		Participants: int(participants),
	}, nil
}

// listEventsAfter 按ID升序返回某个水位线之后的积分事件，巡查员用它补齐遗漏。
func listEventsAfter(lastID uint, limit int) ([]ScoreEvent, error) {
	var events []ScoreEvent
	err := database.DB.
		Where("id > ?", lastID).
		Order("id asc").Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("无法从SQLite读取积分事件: %w", err)
	}
	return events, nil
}
