package streak

import (
	"time"

	"gorm.io/gorm"
)

// Streak 定义了连续发帖记录在SQLite数据库中的持久化模型。
// 每个会话至多一行，只有"记录一次发帖"操作会修改它。
type Streak struct {
	gorm.Model

	// SessionID 是持有该记录的会话UUID
	SessionID string `gorm:"uniqueIndex;not null;type:varchar(36)" json:"sessionId"`

	// CurrentStreak 是当前连续发帖天数，断签后重置为1
	CurrentStreak int `json:"currentStreak"`

	// LongestStreak 是历史最长连续天数，任何更新后都不小于CurrentStreak
	LongestStreak int `json:"longestStreak"`

	// LastPostDate 是最近一次发帖的日期，按天截断
	LastPostDate time.Time `json:"lastPostDate"`

	// TotalPosts 是累计发帖数，单调不减
	TotalPosts int `json:"totalPosts"`
}

// Outcome 描述一次发帖对连签状态的影响
type Outcome string

const (
	// OutcomeStarted 表示首次发帖，连签从1开始
	OutcomeStarted Outcome = "STARTED"
	// OutcomeSameDay 表示同日重复发帖，只累计总数，连签不变
	OutcomeSameDay Outcome = "SAME_DAY"
	// OutcomeContinued 表示连签延续，天数加一
	OutcomeContinued Outcome = "CONTINUED"
	// OutcomeReset 表示断签后重新开始，连签重置为1
	OutcomeReset Outcome = "RESET"
)

// RecordResult 是"记录一次发帖"操作的返回值
type RecordResult struct {
	Outcome Outcome
	Streak  Streak
}

// Snapshot 是对外暴露的连签快照，记录不存在时返回零值状态
type Snapshot struct {
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	LastPostDate  time.Time `json:"lastPostDate"`
	TotalPosts    int       `json:"totalPosts"`
}
