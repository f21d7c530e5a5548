package content

import (
	"testing"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
	"github.com/CampusWhisper/campus-whisper-backend/internal/testutil"
)

func setupContentTest(t *testing.T) {
	t.Helper()
	testutil.SetupDB(t, &Confession{}, &Crush{}, &Spotted{}, &Poll{},
		&streak.Streak{}, &leaderboard.Entry{}, &leaderboard.ScoreEvent{})
	testutil.SetupRedis(t)
}

func bucketScore(t *testing.T, sessionID string, category leaderboard.Category, period leaderboard.Period) float64 {
	t.Helper()
	rank, err := leaderboard.GetMyRank(sessionID, category, period)
	if err != nil {
		t.Fatalf("查询 %s/%s 积分失败: %v", category, period, err)
	}
	return rank.Score
}

func TestCreateConfessionDrivesEngagement(t *testing.T) {
	setupContentTest(t)
	testutil.MarkRedisUnhealthy(t) // 直接校验SQLite事实来源

	sessionID := "00000000-0000-7000-8000-000000000401"
	row, err := CreateConfession(sessionID, "测试表白")
	if err != nil {
		t.Fatalf("发布表白帖失败: %v", err)
	}
	if row.ID == 0 {
		t.Fatal("表白帖应已落库")
	}

	// 连签已记录
	snapshot, err := streak.GetStreak(sessionID)
	if err != nil {
		t.Fatalf("查询连签失败: %v", err)
	}
	if snapshot.CurrentStreak != 1 || snapshot.TotalPosts != 1 {
		t.Fatalf("发帖应记录连签: %+v", snapshot)
	}

	// top_poster已加分
	if got := bucketScore(t, sessionID, leaderboard.CategoryTopPoster, leaderboard.PeriodWeekly); got != postPoints {
		t.Fatalf("发帖应为top_poster加 %f 分，得到 %f", postPoints, got)
	}
}

func TestReactionAwardsAuthor(t *testing.T) {
	setupContentTest(t)
	testutil.MarkRedisUnhealthy(t)

	author := "00000000-0000-7000-8000-000000000402"
	row, err := CreateConfession(author, "求反应")
	if err != nil {
		t.Fatalf("发布表白帖失败: %v", err)
	}

	updated, err := ReactToConfession(row.ID, ReactionFunny)
	if err != nil {
		t.Fatalf("添加反应失败: %v", err)
	}
	if updated.FunnyCount != 1 {
		t.Fatalf("反应计数期望1，得到 %d", updated.FunnyCount)
	}

	if got := bucketScore(t, author, leaderboard.CategoryFunniest, leaderboard.PeriodWeekly); got != reactionPoints {
		t.Fatalf("反应应为作者的funniest加 %f 分，得到 %f", reactionPoints, got)
	}

	// 帮助类反应走另一个分类
	if _, err := ReactToConfession(row.ID, ReactionHelpful); err != nil {
		t.Fatalf("添加反应失败: %v", err)
	}
	if got := bucketScore(t, author, leaderboard.CategoryMostHelpful, leaderboard.PeriodWeekly); got != reactionPoints {
		t.Fatalf("反应应为作者的most_helpful加 %f 分，得到 %f", reactionPoints, got)
	}
}

func TestStreakMilestoneBonus(t *testing.T) {
	setupContentTest(t)
	testutil.MarkRedisUnhealthy(t)

	sessionID := "00000000-0000-7000-8000-000000000403"

	// 先铺一个截止昨天的4天连签，今天发帖时延续到5天触发里程碑
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	seed := streak.Streak{
		SessionID:     sessionID,
		CurrentStreak: 4,
		LongestStreak: 4,
		LastPostDate:  yesterday,
		TotalPosts:    4,
	}
	if err := database.DB.Create(&seed).Error; err != nil {
		t.Fatalf("写入连签行失败: %v", err)
	}

	if _, err := CreateCrush(sessionID, "第五天"); err != nil {
		t.Fatalf("发帖失败: %v", err)
	}

	snapshot, err := streak.GetStreak(sessionID)
	if err != nil {
		t.Fatalf("查询连签失败: %v", err)
	}
	if snapshot.CurrentStreak != 5 {
		t.Fatalf("连签应延续到5天，得到 %d", snapshot.CurrentStreak)
	}

	if got := bucketScore(t, sessionID, leaderboard.CategoryStreakMaster, leaderboard.PeriodWeekly); got != milestonePoints {
		t.Fatalf("第5天应触发里程碑奖励 %f 分，得到 %f", milestonePoints, got)
	}
}

func TestLookupUnknownKind(t *testing.T) {
	setupContentTest(t)

	if _, err := Lookup(Kind("event"), 1); err == nil {
		t.Fatal("未知内容种类的解析应报错")
	}
}
