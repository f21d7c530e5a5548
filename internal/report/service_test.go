package report

import (
	"testing"

	"github.com/CampusWhisper/campus-whisper-backend/internal/admirer"
	"github.com/CampusWhisper/campus-whisper-backend/internal/bookmark"
	"github.com/CampusWhisper/campus-whisper-backend/internal/content"
	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
	"github.com/CampusWhisper/campus-whisper-backend/internal/testutil"
)

func TestGenerateEngagementReportFromSQLite(t *testing.T) {
	testutil.SetupDB(t,
		&persona.Persona{}, &streak.Streak{},
		&leaderboard.Entry{}, &leaderboard.ScoreEvent{},
		&bookmark.Bookmark{}, &admirer.Admirer{},
		&content.Confession{}, &content.Crush{}, &content.Spotted{}, &content.Poll{})
	testutil.SetupRedis(t)
	testutil.MarkRedisUnhealthy(t) // 走SQLite降级路径，同时跳过缓存

	sessionID := "00000000-0000-7000-8000-000000000601"

	created, err := persona.GetOrCreate(sessionID)
	if err != nil {
		t.Fatalf("创建身份失败: %v", err)
	}
	if _, err := streak.RecordPost(sessionID); err != nil {
		t.Fatalf("记录连签失败: %v", err)
	}
	if err := leaderboard.AwardScore(sessionID, leaderboard.CategoryTopPoster, 10); err != nil {
		t.Fatalf("加分失败: %v", err)
	}

	row := content.Confession{SessionID: sessionID, Body: "内容"}
	if err := database.DB.Create(&row).Error; err != nil {
		t.Fatalf("写入内容失败: %v", err)
	}
	if _, err := bookmark.Toggle(sessionID, content.KindConfession, row.ID); err != nil {
		t.Fatalf("收藏失败: %v", err)
	}
	if _, err := admirer.Send(sessionID, "someone", ""); err != nil {
		t.Fatalf("发送仰慕失败: %v", err)
	}
	if _, err := admirer.Send("00000000-0000-7000-8000-000000000602", sessionID, ""); err != nil {
		t.Fatalf("发送仰慕失败: %v", err)
	}

	report, err := GenerateEngagementReport(sessionID)
	if err != nil {
		t.Fatalf("生成报告失败: %v", err)
	}

	if report.Persona.Alias != created.Alias {
		t.Fatalf("报告的身份不正确: %+v", report.Persona)
	}
	if report.Streak.CurrentStreak != 1 {
		t.Fatalf("报告的连签不正确: %+v", report.Streak)
	}
	if len(report.Ranks) != len(leaderboard.AllCategories) {
		t.Fatalf("报告应覆盖全部积分类别，得到 %d 个", len(report.Ranks))
	}
	for _, rank := range report.Ranks {
		if rank.Category == string(leaderboard.CategoryTopPoster) {
			if rank.Weekly.Rank != 1 || rank.Weekly.Score != 10 {
				t.Fatalf("top_poster周榜名次不正确: %+v", rank.Weekly)
			}
		}
	}
	if report.BookmarkCount != 1 {
		t.Fatalf("收藏数期望1，得到 %d", report.BookmarkCount)
	}
	if report.AdmirationsSent != 1 {
		t.Fatalf("发出的仰慕数期望1，得到 %d", report.AdmirationsSent)
	}
	if report.AdmirersReceived != 1 {
		t.Fatalf("收到的仰慕数期望1，得到 %d", report.AdmirersReceived)
	}
}

func TestGenerateEngagementReportRequiresSession(t *testing.T) {
	if _, err := GenerateEngagementReport(""); err == nil {
		t.Fatal("缺少会话标识应报错")
	}
}
