package persona

import (
	"gorm.io/gorm"
)

// Persona 定义了匿名展示身份在SQLite数据库中的持久化模型。
// 每个会话至多拥有一条记录，三个展示字段均来自固定调色板的随机抽取。
type Persona struct {
	gorm.Model

	// SessionID 是持有该身份的会话UUID
	SessionID string `gorm:"uniqueIndex;not null;type:varchar(36)" json:"sessionId"`

	// Avatar 是固定表情调色板中的一个字形
	Avatar string `json:"avatar"`

	// Alias 是生成的展示昵称，形如 {形容词}{名词}{0..99}。
	// 昵称只是装饰，允许不同会话撞名。
	Alias string `json:"alias"`

	// Color 是固定调色板中的一个十六进制颜色
	Color string `json:"color"`
}

// Info 定义了在Redis persona:info Hash中存储的身份数据。
// 排行榜与报告模块批量读取它来完成匿名身份拼接。
type Info struct {
	Avatar string `json:"avatar"`
	Alias  string `json:"alias"`
	Color  string `json:"color"`
}

// PlaceholderInfo 返回缺省身份，用于排行榜中尚未创建身份的会话。
func PlaceholderInfo() Info {
	return Info{
		Avatar: "👻",
		Alias:  "匿名同学",
		Color:  "#95A5A6",
	}
}
