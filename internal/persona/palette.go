package persona

import (
	"fmt"
	"math/rand"
)

// 固定调色板。身份的三个字段各自独立、均匀地从这里抽取。
var (
	avatarPalette = []string{
		"🐱", "🐶", "🐹", "🐰", "🦊",
		"🐻", "🐼", "🐨", "🐯", "🦁",
		"🐮", "🐷", "🐸", "🐵", "🐧",
	}

	aliasAdjectives = []string{
		"神秘", "快乐", "慵懒", "傲娇", "安静",
		"暴走", "迷糊", "高冷", "元气", "佛系",
	}

	aliasNouns = []string{
		"小猫", "柯基", "水豚", "企鹅", "仓鼠",
		"河豚", "考拉", "柴犬", "刺猬", "羊驼",
	}

	colorPalette = []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
		"#F7DC6F", "#BB8FCE", "#85C1E9", "#F8C471", "#82E0AA",
	}
)

// randomAvatar 从字形调色板中均匀抽取一个头像。
func randomAvatar() string {
	return avatarPalette[rand.Intn(len(avatarPalette))]
}

// randomAlias 生成一个 {形容词}{名词}{0..99} 格式的昵称。
// 不做查重，撞名是可接受的设计行为。
func randomAlias() string {
	adjective := aliasAdjectives[rand.Intn(len(aliasAdjectives))]
	noun := aliasNouns[rand.Intn(len(aliasNouns))]
	return fmt.Sprintf("%s%s%d", adjective, noun, rand.Intn(100))
}

// randomColor 从颜色调色板中均匀抽取一个颜色。
func randomColor() string {
	return colorPalette[rand.Intn(len(colorPalette))]
}
