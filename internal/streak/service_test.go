package streak

import (
	"testing"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/testutil"
)

// setFixedTime 把包内时钟固定到给定时刻，测试结束后恢复
func setFixedTime(t *testing.T, at time.Time) {
	t.Helper()
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = time.Now })
}

func TestRecordPostStateMachine(t *testing.T) {
	testutil.SetupDB(t, &Streak{})
	testutil.SetupRedis(t)

	day1 := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	setFixedTime(t, day1)

	sessionID := "00000000-0000-7000-8000-000000000001"

	// 首次发帖
	result, err := RecordPost(sessionID)
	if err != nil {
		t.Fatalf("首次发帖失败: %v", err)
	}
	if result.Outcome != OutcomeStarted {
		t.Fatalf("期望 STARTED，得到 %s", result.Outcome)
	}
	if result.Streak.CurrentStreak != 1 || result.Streak.LongestStreak != 1 || result.Streak.TotalPosts != 1 {
		t.Fatalf("首次发帖后的状态不正确: %+v", result.Streak)
	}

	// 同一天再次发帖：只累计总数
	timeNow = func() time.Time { return day1.Add(3 * time.Hour) }
	result, err = RecordPost(sessionID)
	if err != nil {
		t.Fatalf("同日发帖失败: %v", err)
	}
	if result.Outcome != OutcomeSameDay {
		t.Fatalf("期望 SAME_DAY，得到 %s", result.Outcome)
	}
	if result.Streak.CurrentStreak != 1 || result.Streak.TotalPosts != 2 {
		t.Fatalf("同日发帖后的状态不正确: %+v", result.Streak)
	}

	// 第二天发帖：连签延续
	timeNow = func() time.Time { return day1.AddDate(0, 0, 1) }
	result, err = RecordPost(sessionID)
	if err != nil {
		t.Fatalf("次日发帖失败: %v", err)
	}
	if result.Outcome != OutcomeContinued {
		t.Fatalf("期望 CONTINUED，得到 %s", result.Outcome)
	}
	if result.Streak.CurrentStreak != 2 || result.Streak.LongestStreak != 2 || result.Streak.TotalPosts != 3 {
		t.Fatalf("次日发帖后的状态不正确: %+v", result.Streak)
	}

	// 隔了三天发帖：断签重置，最长纪录保留
	timeNow = func() time.Time { return day1.AddDate(0, 0, 4) }
	result, err = RecordPost(sessionID)
	if err != nil {
		t.Fatalf("断签发帖失败: %v", err)
	}
	if result.Outcome != OutcomeReset {
		t.Fatalf("期望 RESET，得到 %s", result.Outcome)
	}
	if result.Streak.CurrentStreak != 1 || result.Streak.LongestStreak != 2 || result.Streak.TotalPosts != 4 {
		t.Fatalf("断签后的状态不正确: %+v", result.Streak)
	}
}

func TestRecordPostMidnightBoundary(t *testing.T) {
	testutil.SetupDB(t, &Streak{})
	testutil.SetupRedis(t)

	// 23:59发帖，次日00:01再发：跨过UTC零点算作次日，连签延续
	sessionID := "00000000-0000-7000-8000-000000000002"
	late := time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC)
	setFixedTime(t, late)

	if _, err := RecordPost(sessionID); err != nil {
		t.Fatalf("发帖失败: %v", err)
	}

	timeNow = func() time.Time { return late.Add(2 * time.Minute) }
	result, err := RecordPost(sessionID)
	if err != nil {
		t.Fatalf("跨零点发帖失败: %v", err)
	}
	if result.Outcome != OutcomeContinued || result.Streak.CurrentStreak != 2 {
		t.Fatalf("跨零点发帖应延续连签: %+v (%s)", result.Streak, result.Outcome)
	}
}

func TestGetStreakAbsent(t *testing.T) {
	testutil.SetupDB(t, &Streak{})

	snapshot, err := GetStreak("00000000-0000-7000-8000-0000000000ff")
	if err != nil {
		t.Fatalf("查询不存在的连签失败: %v", err)
	}
	if snapshot.CurrentStreak != 0 || snapshot.LongestStreak != 0 || snapshot.TotalPosts != 0 {
		t.Fatalf("不存在的会话应返回零值状态: %+v", snapshot)
	}
}

func TestTopStreaksRedisMirror(t *testing.T) {
	testutil.SetupDB(t, &Streak{})
	testutil.SetupRedis(t)

	day := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	setFixedTime(t, day)

	sessions := []string{
		"00000000-0000-7000-8000-00000000000a",
		"00000000-0000-7000-8000-00000000000b",
		"00000000-0000-7000-8000-00000000000c",
	}
	// a连签3天，b连签2天，c连签1天
	for i, sessionID := range sessions {
		days := 3 - i
		for d := 0; d < days; d++ {
			timeNow = func() time.Time { return day.AddDate(0, 0, d) }
			if _, err := RecordPost(sessionID); err != nil {
				t.Fatalf("发帖失败: %v", err)
			}
		}
	}

	ranked, err := TopStreaks(10)
	if err != nil {
		t.Fatalf("读取连签排行失败: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("期望3个条目，得到 %d", len(ranked))
	}
	if ranked[0].SessionID != sessions[0] || ranked[0].CurrentStreak != 3 {
		t.Fatalf("排行首位不正确: %+v", ranked[0])
	}
	if ranked[2].SessionID != sessions[2] || ranked[2].CurrentStreak != 1 {
		t.Fatalf("排行末位不正确: %+v", ranked[2])
	}
}

func TestTopStreaksSQLiteFallbackTieBreak(t *testing.T) {
	testutil.SetupDB(t, &Streak{})
	testutil.SetupRedis(t)
	testutil.MarkRedisUnhealthy(t)

	day := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	// 同分时会话UUID字典序倒序，与Redis镜像的次序一致
	rows := []Streak{
		{SessionID: "00000000-0000-7000-8000-000000000001", CurrentStreak: 2, LongestStreak: 2, LastPostDate: day, TotalPosts: 2},
		{SessionID: "00000000-0000-7000-8000-000000000003", CurrentStreak: 2, LongestStreak: 2, LastPostDate: day, TotalPosts: 2},
		{SessionID: "00000000-0000-7000-8000-000000000002", CurrentStreak: 5, LongestStreak: 5, LastPostDate: day, TotalPosts: 5},
	}
	for i := range rows {
		if err := database.DB.Create(&rows[i]).Error; err != nil {
			t.Fatalf("写入连签行失败: %v", err)
		}
	}

	ranked, err := TopStreaks(10)
	if err != nil {
		t.Fatalf("读取连签排行失败: %v", err)
	}
	want := []string{
		"00000000-0000-7000-8000-000000000002",
		"00000000-0000-7000-8000-000000000003",
		"00000000-0000-7000-8000-000000000001",
	}
	for i, sessionID := range want {
		if ranked[i].SessionID != sessionID {
			t.Fatalf("第 %d 位期望 %s，得到 %s", i+1, sessionID, ranked[i].SessionID)
		}
	}
}
