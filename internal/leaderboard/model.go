package leaderboard

import (
	"time"

	"gorm.io/gorm"
)

// Category 定义了积分类别的枚举类型
type Category string

const (
	// CategoryTopPoster 累计发帖积分
	CategoryTopPoster Category = "top_poster"
	// CategoryFunniest "有趣"反应积分
	CategoryFunniest Category = "funniest"
	// CategoryMostHelpful "有用"反应积分
	CategoryMostHelpful Category = "most_helpful"
	// CategoryStreakMaster 连签里程碑积分
	CategoryStreakMaster Category = "streak_master"
)

// Period 定义了统计周期的枚举类型
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "alltime"
)

// AllCategories 按固定顺序列出全部积分类别
var AllCategories = []Category{CategoryTopPoster, CategoryFunniest, CategoryMostHelpful, CategoryStreakMaster}

// AllPeriods 按固定顺序列出全部统计周期
var AllPeriods = []Period{PeriodWeekly, PeriodMonthly, PeriodAllTime}

// ParseCategory 校验并解析类别字符串
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryTopPoster, CategoryFunniest, CategoryMostHelpful, CategoryStreakMaster:
		return Category(s), true
	}
	return "", false
}

// ParsePeriod 校验并解析周期字符串
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return Period(s), true
	}
	return "", false
}

// Entry 定义了积分桶在SQLite数据库中的持久化模型。
// (SessionID, Category, Period, PeriodStart) 四元组唯一确定一行，
// 一次加分会同时落到weekly/monthly/alltime三个桶。
type Entry struct {
	gorm.Model

	SessionID   string    `gorm:"uniqueIndex:idx_lb_bucket;not null;type:varchar(36)" json:"sessionId"`
	Category    Category  `gorm:"uniqueIndex:idx_lb_bucket;not null;type:varchar(16)" json:"category"`
	Period      Period    `gorm:"uniqueIndex:idx_lb_bucket;not null;type:varchar(8)" json:"period"`
	PeriodStart time.Time `gorm:"uniqueIndex:idx_lb_bucket;not null" json:"periodStart"`

	// Score 是桶内累计积分
	Score float64 `gorm:"index" json:"score"`
}

// ScoreEvent 定义了单次加分事件的审计记录。
// 事件ID单调递增，积分事件处理器按此顺序把事件镜像到Redis。
type ScoreEvent struct {
	gorm.Model

	SessionID string    `gorm:"index;not null;type:varchar(36)" json:"sessionId"`
	Category  Category  `gorm:"not null;type:varchar(16)" json:"category"`
	Delta     float64   `json:"delta"`
	EventTime time.Time `gorm:"not null" json:"eventTime"`
}
