package persona

import (
	"regexp"
	"testing"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/testutil"
)

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

var aliasPattern = regexp.MustCompile(`^(.+?)(\d{1,2})$`)

func assertFromPalette(t *testing.T, p *Persona) {
	t.Helper()
	if !contains(avatarPalette, p.Avatar) {
		t.Fatalf("头像 %q 不在调色板中", p.Avatar)
	}
	if !contains(colorPalette, p.Color) {
		t.Fatalf("颜色 %q 不在调色板中", p.Color)
	}
	if !aliasPattern.MatchString(p.Alias) {
		t.Fatalf("昵称 %q 不符合 形容词+名词+数字 的格式", p.Alias)
	}
}

func TestGetOrCreateIsStable(t *testing.T) {
	testutil.SetupDB(t, &Persona{})
	testutil.SetupRedis(t)

	sessionID := "00000000-0000-7000-8000-000000000101"
	first, err := GetOrCreate(sessionID)
	if err != nil {
		t.Fatalf("首次获取身份失败: %v", err)
	}
	assertFromPalette(t, first)

	// 重复读取不得重新随机化
	second, err := GetOrCreate(sessionID)
	if err != nil {
		t.Fatalf("再次获取身份失败: %v", err)
	}
	if first.Avatar != second.Avatar || first.Alias != second.Alias || first.Color != second.Color {
		t.Fatalf("重复读取改变了身份: %+v -> %+v", first, second)
	}
}

func TestUpdatePartial(t *testing.T) {
	testutil.SetupDB(t, &Persona{})
	testutil.SetupRedis(t)

	sessionID := "00000000-0000-7000-8000-000000000102"
	created, err := GetOrCreate(sessionID)
	if err != nil {
		t.Fatalf("创建身份失败: %v", err)
	}

	newAlias := "测试昵称7"
	updated, err := Update(sessionID, UpdateRequest{Alias: &newAlias})
	if err != nil {
		t.Fatalf("部分更新失败: %v", err)
	}
	if updated.Alias != newAlias {
		t.Fatalf("昵称未更新: %q", updated.Alias)
	}
	if updated.Avatar != created.Avatar || updated.Color != created.Color {
		t.Fatal("未提供的字段不应被改变")
	}
}

func TestUpdateMissingRowFillsRandomly(t *testing.T) {
	testutil.SetupDB(t, &Persona{})
	testutil.SetupRedis(t)

	sessionID := "00000000-0000-7000-8000-000000000103"
	newColor := "#123456"
	updated, err := Update(sessionID, UpdateRequest{Color: &newColor})
	if err != nil {
		t.Fatalf("对不存在身份的更新失败: %v", err)
	}
	if updated.Color != newColor {
		t.Fatalf("颜色未更新: %q", updated.Color)
	}
	// 缺省字段应被随机抽取补齐，而不是留空
	if !contains(avatarPalette, updated.Avatar) {
		t.Fatalf("头像应从调色板补齐，得到 %q", updated.Avatar)
	}
	if updated.Alias == "" {
		t.Fatal("昵称应被随机补齐")
	}
}

func TestRegenerate(t *testing.T) {
	testutil.SetupDB(t, &Persona{})
	testutil.SetupRedis(t)

	sessionID := "00000000-0000-7000-8000-000000000104"
	if _, err := GetOrCreate(sessionID); err != nil {
		t.Fatalf("创建身份失败: %v", err)
	}

	regenerated, err := Regenerate(sessionID)
	if err != nil {
		t.Fatalf("重新生成身份失败: %v", err)
	}
	assertFromPalette(t, regenerated)

	// 只存在一行
	var count int64
	if err := database.DB.Model(&Persona{}).Count(&count).Error; err != nil {
		t.Fatalf("统计身份行失败: %v", err)
	}
	if count != 1 {
		t.Fatalf("重新生成不应产生新行，得到 %d 行", count)
	}
}

func TestBulkInfoFromDBPlaceholder(t *testing.T) {
	testutil.SetupDB(t, &Persona{})
	testutil.SetupRedis(t)

	known := "00000000-0000-7000-8000-000000000105"
	created, err := GetOrCreate(known)
	if err != nil {
		t.Fatalf("创建身份失败: %v", err)
	}

	infos, err := BulkInfoFromDB([]string{known, "00000000-0000-7000-8000-0000000000ff"})
	if err != nil {
		t.Fatalf("批量读取身份失败: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("期望2条结果，得到 %d", len(infos))
	}
	if infos[0].Alias != created.Alias {
		t.Fatalf("已知会话的身份不正确: %+v", infos[0])
	}
	if infos[1] != PlaceholderInfo() {
		t.Fatalf("未知会话应返回占位身份: %+v", infos[1])
	}
}
