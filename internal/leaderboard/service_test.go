package leaderboard

import (
	"testing"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/metadata"
	"github.com/CampusWhisper/campus-whisper-backend/internal/testutil"
)

func setFixedTime(t *testing.T, at time.Time) {
	t.Helper()
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = time.Now })
}

func countBucketRows(t *testing.T, sessionID string, category Category) map[Period]float64 {
	t.Helper()
	var rows []Entry
	if err := database.DB.Where("session_id = ? AND category = ?", sessionID, category).
		Find(&rows).Error; err != nil {
		t.Fatalf("读取积分桶失败: %v", err)
	}
	scores := make(map[Period]float64, len(rows))
	for _, row := range rows {
		scores[row.Period] = row.Score
	}
	return scores
}

func TestAwardScoreFanOut(t *testing.T) {
	testutil.SetupDB(t, &Entry{}, &ScoreEvent{}, &metadata.Metadata{})
	testutil.SetupRedis(t)
	setFixedTime(t, time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC))

	sessionID := "00000000-0000-7000-8000-000000000010"

	if err := AwardScore(sessionID, CategoryFunniest, 5); err != nil {
		t.Fatalf("加分失败: %v", err)
	}

	scores := countBucketRows(t, sessionID, CategoryFunniest)
	if len(scores) != 3 {
		t.Fatalf("一次加分应扇出到3个桶，得到 %d 个", len(scores))
	}
	for _, period := range AllPeriods {
		if scores[period] != 5 {
			t.Fatalf("%s 桶期望5分，得到 %f", period, scores[period])
		}
	}

	// 再次加分：三个桶同步累加
	if err := AwardScore(sessionID, CategoryFunniest, 3); err != nil {
		t.Fatalf("第二次加分失败: %v", err)
	}
	scores = countBucketRows(t, sessionID, CategoryFunniest)
	for _, period := range AllPeriods {
		if scores[period] != 8 {
			t.Fatalf("%s 桶期望8分，得到 %f", period, scores[period])
		}
	}

	// 审计事件逐条落库
	var eventCount int64
	if err := database.DB.Model(&ScoreEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("统计积分事件失败: %v", err)
	}
	if eventCount != 2 {
		t.Fatalf("期望2条积分事件，得到 %d", eventCount)
	}
}

func TestAwardScoreRejectsInvalidInput(t *testing.T) {
	testutil.SetupDB(t, &Entry{}, &ScoreEvent{})

	if err := AwardScore("", CategoryFunniest, 5); err == nil {
		t.Fatal("缺少会话身份的加分应被拒绝")
	}
	if err := AwardScore("s", Category("downloads"), 5); err == nil {
		t.Fatal("未知类别的加分应被拒绝")
	}
	if err := AwardScore("s", CategoryFunniest, 0); err == nil {
		t.Fatal("非正增量的加分应被拒绝")
	}
}

func TestGetRankedEntriesFromMirror(t *testing.T) {
	testutil.SetupDB(t, &Entry{}, &ScoreEvent{}, &metadata.Metadata{})
	testutil.SetupRedis(t)
	setFixedTime(t, time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC))

	high := "00000000-0000-7000-8000-000000000021"
	low := "00000000-0000-7000-8000-000000000022"
	if err := AwardScore(high, CategoryTopPoster, 20); err != nil {
		t.Fatalf("加分失败: %v", err)
	}
	if err := AwardScore(low, CategoryTopPoster, 10); err != nil {
		t.Fatalf("加分失败: %v", err)
	}

	// 预热把SQLite的事实重建到Redis镜像
	if err := WarmupCache(); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	ranked, err := GetRankedEntries(CategoryTopPoster, PeriodWeekly, 10)
	if err != nil {
		t.Fatalf("读取排行失败: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("期望2个条目，得到 %d", len(ranked))
	}
	if ranked[0].SessionID != high || ranked[0].Score != 20 {
		t.Fatalf("排行首位不正确: %+v", ranked[0])
	}
	if ranked[1].SessionID != low || ranked[1].Score != 10 {
		t.Fatalf("排行次位不正确: %+v", ranked[1])
	}
}

func TestGetMyRankSQLiteFallback(t *testing.T) {
	testutil.SetupDB(t, &Entry{}, &ScoreEvent{})
	testutil.SetupRedis(t)
	testutil.MarkRedisUnhealthy(t)
	setFixedTime(t, time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC))

	// 同分的两个会话按UUID字典序倒序排名
	a := "00000000-0000-7000-8000-000000000031"
	b := "00000000-0000-7000-8000-000000000033"
	c := "00000000-0000-7000-8000-000000000032"
	if err := AwardScore(a, CategoryMostHelpful, 10); err != nil {
		t.Fatalf("加分失败: %v", err)
	}
	if err := AwardScore(b, CategoryMostHelpful, 10); err != nil {
		t.Fatalf("加分失败: %v", err)
	}
	if err := AwardScore(c, CategoryMostHelpful, 25); err != nil {
		t.Fatalf("加分失败: %v", err)
	}

	rank, err := GetMyRank(c, CategoryMostHelpful, PeriodWeekly)
	if err != nil {
		t.Fatalf("查询名次失败: %v", err)
	}
	if rank.Rank != 1 || rank.Score != 25 || rank.Participants != 3 {
		t.Fatalf("最高分名次不正确: %+v", rank)
	}

	rank, err = GetMyRank(b, CategoryMostHelpful, PeriodWeekly)
	if err != nil {
		t.Fatalf("查询名次失败: %v", err)
	}
	if rank.Rank != 2 {
		t.Fatalf("同分中UUID较大的会话应排第2，得到 %d", rank.Rank)
	}

	rank, err = GetMyRank(a, CategoryMostHelpful, PeriodWeekly)
	if err != nil {
		t.Fatalf("查询名次失败: %v", err)
	}
	if rank.Rank != 3 {
		t.Fatalf("同分中UUID较小的会话应排第3，得到 %d", rank.Rank)
	}

	// 桶中没有积分的会话
	rank, err = GetMyRank("00000000-0000-7000-8000-0000000000ff", CategoryMostHelpful, PeriodWeekly)
	if err != nil {
		t.Fatalf("查询名次失败: %v", err)
	}
	if rank.Rank != 0 || rank.Participants != 3 {
		t.Fatalf("无积分会话应返回rank=0: %+v", rank)
	}
}

func TestGetMyRankFromMirror(t *testing.T) {
	testutil.SetupDB(t, &Entry{}, &ScoreEvent{}, &metadata.Metadata{})
	testutil.SetupRedis(t)
	setFixedTime(t, time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC))

	a := "00000000-0000-7000-8000-000000000041"
	b := "00000000-0000-7000-8000-000000000042"
	if err := AwardScore(a, CategoryStreakMaster, 25); err != nil {
		t.Fatalf("加分失败: %v", err)
	}
	if err := AwardScore(b, CategoryStreakMaster, 50); err != nil {
		t.Fatalf("加分失败: %v", err)
	}
	if err := WarmupCache(); err != nil {
		t.Fatalf("预热失败: %v", err)
	}

	rank, err := GetMyRank(a, CategoryStreakMaster, PeriodAllTime)
	if err != nil {
		t.Fatalf("查询名次失败: %v", err)
	}
	if rank.Rank != 2 || rank.Score != 25 || rank.Participants != 2 {
		t.Fatalf("镜像路径的名次不正确: %+v", rank)
	}

	rank, err = GetMyRank("00000000-0000-7000-8000-0000000000ee", CategoryStreakMaster, PeriodAllTime)
	if err != nil {
		t.Fatalf("查询名次失败: %v", err)
	}
	if rank.Rank != 0 || rank.Participants != 2 {
		t.Fatalf("无积分会话应返回rank=0: %+v", rank)
	}
}
