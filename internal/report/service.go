package report

import (
	"fmt"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/admirer"
	"github.com/CampusWhisper/campus-whisper-backend/internal/bookmark"
	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
)

const (
	CacheTTL = 1 * time.Minute
)

// GenerateEngagementReport 是生成参与度报告的统一入口。
// Redis健康时优先读缓存，未命中则实时聚合并异步回填缓存；
// Redis不可用时直接从SQLite聚合（各模块的读取自带降级路径）。
func GenerateEngagementReport(sessionID string) (*EngagementReport, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("缺少会话标识")
	}

	useCache := database.IsRedisHealthy()

	if useCache {
		cached, err := GetReportCache(sessionID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	report, err := buildReport(sessionID)
	if err != nil {
		return nil, err
	}

	if useCache {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("严重错误: 缓存报告的goroutine发生panic: %v\n", r)
				}
			}()
			_ = SetReportCache(report, CacheTTL)
		}()
	}

	return report, nil
}

// buildReport 实时聚合各模块的数据生成一份新报告
func buildReport(sessionID string) (*EngagementReport, error) {
	report := &EngagementReport{
		SessionID:   sessionID,
		GeneratedAt: time.Now(),
	}

	infos, err := persona.BulkInfoFromDB([]string{sessionID})
	if err != nil || len(infos) == 0 {
		report.Persona = persona.PlaceholderInfo()
	} else {
		report.Persona = infos[0]
	}

	snapshot, err := streak.GetStreak(sessionID)
	if err != nil {
		return nil, fmt.Errorf("读取连签状态失败: %w", err)
	}
	report.Streak = *snapshot

	for _, category := range leaderboard.AllCategories {
		rank := CategoryRank{Category: string(category)}
		for _, pair := range []struct {
			period leaderboard.Period
			dest   *leaderboard.MyRank
		}{
			{leaderboard.PeriodWeekly, &rank.Weekly},
			{leaderboard.PeriodMonthly, &rank.Monthly},
			{leaderboard.PeriodAllTime, &rank.Alltime},
		} {
			myRank, err := leaderboard.GetMyRank(sessionID, category, pair.period)
			if err != nil {
				return nil, fmt.Errorf("读取 %s/%s 名次失败: %w", category, pair.period, err)
			}
			*pair.dest = *myRank
		}
		report.Ranks = append(report.Ranks, rank)
	}

	if report.BookmarkCount, err = bookmark.CountMine(sessionID); err != nil {
		return nil, fmt.Errorf("统计收藏数失败: %w", err)
	}
	if report.AdmirationsSent, err = admirer.CountSentBy(sessionID); err != nil {
		return nil, fmt.Errorf("统计发出的仰慕数失败: %w", err)
	}
	if report.AdmirersReceived, err = admirer.CountForTarget(sessionID); err != nil {
		return nil, fmt.Errorf("统计收到的仰慕数失败: %w", err)
	}

	return report, nil
}
