package content

import (
	"errors"
	"testing"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/testutil"
)

func TestPickFeaturedConfession(t *testing.T) {
	testutil.SetupDB(t, &Confession{}, &Crush{}, &Spotted{}, &Poll{})

	rows := []Confession{
		{SessionID: "a", Body: "第一条"},
		{SessionID: "b", Body: "第二条"},
	}
	for i := range rows {
		if err := database.DB.Create(&rows[i]).Error; err != nil {
			t.Fatalf("写入表白帖失败: %v", err)
		}
	}

	if err := InitializeFeaturedRepository(); err != nil {
		t.Fatalf("初始化精选仓库失败: %v", err)
	}
	t.Cleanup(func() { featuredRepo = nil })

	totalBefore := featuredRepo.weightsTree.TotalSum()

	picked, err := PickFeaturedConfession()
	if err != nil {
		t.Fatalf("精选抽样失败: %v", err)
	}
	if picked.ID != rows[0].ID && picked.ID != rows[1].ID {
		t.Fatalf("抽中了不存在的帖子: %d", picked.ID)
	}
	if picked.FeatureCount != 1 {
		t.Fatalf("抽中后曝光计数期望1，得到 %d", picked.FeatureCount)
	}

	// 曝光计数已持久化，权重随之衰减
	var stored Confession
	if err := database.DB.First(&stored, picked.ID).Error; err != nil {
		t.Fatalf("读取帖子失败: %v", err)
	}
	if stored.FeatureCount != 1 {
		t.Fatalf("曝光计数应写回SQLite，得到 %d", stored.FeatureCount)
	}

	// 被抽中的帖子权重从1衰减到1/2，总权重相应减少0.5
	totalAfter := featuredRepo.weightsTree.TotalSum()
	if diff := totalBefore - totalAfter; diff < 0.499 || diff > 0.501 {
		t.Fatalf("总权重期望减少0.5，实际减少 %f", diff)
	}
}

func TestPickFeaturedEmptyRepository(t *testing.T) {
	testutil.SetupDB(t, &Confession{}, &Crush{}, &Spotted{}, &Poll{})

	if err := InitializeFeaturedRepository(); err != nil {
		t.Fatalf("初始化精选仓库失败: %v", err)
	}
	t.Cleanup(func() { featuredRepo = nil })

	if _, err := PickFeaturedConfession(); !errors.Is(err, ErrNoFeaturedCandidate) {
		t.Fatalf("空仓库应报ErrNoFeaturedCandidate，得到 %v", err)
	}
}

func TestRegisterFeaturedCandidate(t *testing.T) {
	testutil.SetupDB(t, &Confession{}, &Crush{}, &Spotted{}, &Poll{})

	if err := InitializeFeaturedRepository(); err != nil {
		t.Fatalf("初始化精选仓库失败: %v", err)
	}
	t.Cleanup(func() { featuredRepo = nil })

	row := Confession{SessionID: "a", Body: "新帖"}
	if err := database.DB.Create(&row).Error; err != nil {
		t.Fatalf("写入表白帖失败: %v", err)
	}
	registerFeaturedCandidate(&row)

	picked, err := PickFeaturedConfession()
	if err != nil {
		t.Fatalf("精选抽样失败: %v", err)
	}
	if picked.ID != row.ID {
		t.Fatalf("唯一的候选帖应被抽中，得到 %d", picked.ID)
	}
}
