package leaderboard

import (
	"testing"
	"time"
)

func TestBucketStartWeekly(t *testing.T) {
	// 2026-03-11是周三，该周的周日是2026-03-08
	wednesday := time.Date(2026, time.March, 11, 16, 45, 0, 0, time.UTC)
	got := BucketStart(PeriodWeekly, wednesday)
	want := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("周三所在周的起点期望 %v，得到 %v", want, got)
	}

	// 周日当天的桶起点是当天零点
	sunday := time.Date(2026, time.March, 8, 1, 0, 0, 0, time.UTC)
	got = BucketStart(PeriodWeekly, sunday)
	if !got.Equal(want) {
		t.Fatalf("周日当天的起点期望 %v，得到 %v", want, got)
	}
}

func TestBucketStartMonthly(t *testing.T) {
	at := time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC)
	got := BucketStart(PeriodMonthly, at)
	want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("月桶起点期望 %v，得到 %v", want, got)
	}
}

func TestBucketStartAlltime(t *testing.T) {
	a := BucketStart(PeriodAllTime, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC))
	b := BucketStart(PeriodAllTime, time.Date(2031, time.December, 31, 0, 0, 0, 0, time.UTC))
	if !a.Equal(b) {
		t.Fatalf("全时段桶的起点应固定不变: %v != %v", a, b)
	}
}

func TestMirrorKeyFormat(t *testing.T) {
	at := time.Date(2026, time.March, 11, 16, 45, 0, 0, time.UTC)
	got := MirrorKey(CategoryFunniest, PeriodWeekly, at)
	want := "lb:funniest:weekly:20260308"
	if got != want {
		t.Fatalf("镜像键名期望 %s，得到 %s", want, got)
	}
}

func TestParseCategoryAndPeriod(t *testing.T) {
	if _, ok := ParseCategory("top_poster"); !ok {
		t.Fatal("top_poster 应是合法类别")
	}
	if _, ok := ParseCategory("downloads"); ok {
		t.Fatal("未知类别不应通过校验")
	}
	if _, ok := ParsePeriod("weekly"); !ok {
		t.Fatal("weekly 应是合法周期")
	}
	if _, ok := ParsePeriod("daily"); ok {
		t.Fatal("未知周期不应通过校验")
	}
}
