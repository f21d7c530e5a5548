package leaderboard

import (
	"fmt"
	"time"
)

// alltimeEpoch 是全时段桶的固定起点，代表"系统历史的开端"。
var alltimeEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// truncateToDay 将时间截断到UTC的零点
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BucketStart 计算给定时刻在指定周期下所属桶的起点：
//   - weekly:  最近的周日00:00（周日当天即当天零点）
//   - monthly: 当月一日00:00
//   - alltime: 固定的历史起点
func BucketStart(period Period, at time.Time) time.Time {
	day := truncateToDay(at)
	switch period {
	case PeriodWeekly:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case PeriodMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return alltimeEpoch
	}
}

// bucketKeySuffix 生成桶起点在Redis键名中的日期片段
func bucketKeySuffix(start time.Time) string {
	return start.Format("20060102")
}

// MirrorKey 生成某个(类别, 周期, 时刻)对应桶的Redis Sorted Set键名。
// Score: 桶内累计积分
// Member: 会话UUID
func MirrorKey(category Category, period Period, at time.Time) string {
	return fmt.Sprintf("lb:%s:%s:%s", category, period, bucketKeySuffix(BucketStart(period, at)))
}
