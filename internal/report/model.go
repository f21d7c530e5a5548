package report

import (
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
)

// CategoryRank 是报告中单个分类的名次信息
type CategoryRank struct {
	Category string           `json:"category"`
	Weekly   leaderboard.MyRank `json:"weekly"`
	Monthly  leaderboard.MyRank `json:"monthly"`
	Alltime  leaderboard.MyRank `json:"alltime"`
}

// EngagementReport 是一个会话的参与度总览。
// 它聚合了身份、连签、各分类名次、收藏和仰慕统计。
type EngagementReport struct {
	SessionID   string    `json:"sessionId"`
	GeneratedAt time.Time `json:"generatedAt"`

	Persona persona.Info    `json:"persona"`
	Streak  streak.Snapshot `json:"streak"`

	Ranks []CategoryRank `json:"ranks"`

	BookmarkCount    int64 `json:"bookmarkCount"`
	AdmirationsSent  int64 `json:"admirationsSent"`
	AdmirersReceived int64 `json:"admirersReceived"`
}
