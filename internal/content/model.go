package content

import (
	"gorm.io/gorm"
)

// Kind 定义了内容种类的枚举类型。
// 收藏等跨内容引用使用 (Kind, ID) 这样的带标签引用，
// 而不是四个互斥的可空外键。
type Kind string

const (
	KindConfession Kind = "confession"
	KindCrush      Kind = "crush"
	KindSpotted    Kind = "spotted"
	KindPoll       Kind = "poll"
)

// ParseKind 校验并解析内容种类字符串
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindConfession, KindCrush, KindSpotted, KindPoll:
		return Kind(s), true
	}
	return "", false
}

// Confession 是匿名表白墙帖子
type Confession struct {
	gorm.Model

	// SessionID 是发帖会话的UUID，对外永不暴露
	SessionID string `gorm:"index;not null;type:varchar(36)" json:"-"`

	Body string `gorm:"not null" json:"body"`

	// FunnyCount / HelpfulCount 是反应计数，反应同时为作者加分
	FunnyCount   int `json:"funnyCount"`
	HelpfulCount int `json:"helpfulCount"`

	// FeatureCount 是被精选展示的次数，冷门内容优先轮换
	FeatureCount int `json:"-"`
}

// Crush 是匿名心动帖
type Crush struct {
	gorm.Model

	SessionID string `gorm:"index;not null;type:varchar(36)" json:"-"`
	Body      string `gorm:"not null" json:"body"`
}

// Spotted 是"偶遇"帖
type Spotted struct {
	gorm.Model

	SessionID string `gorm:"index;not null;type:varchar(36)" json:"-"`
	Location  string `json:"location"`
	Body      string `gorm:"not null" json:"body"`
}

// Poll 是投票帖，选项以JSON数组字符串存储
type Poll struct {
	gorm.Model

	SessionID string `gorm:"index;not null;type:varchar(36)" json:"-"`
	Question  string `gorm:"not null" json:"question"`
	Options   string `gorm:"not null" json:"options"`
}

// Ref 是一条已解析的内容引用，恰好指向四种内容之一。
type Ref struct {
	Kind       Kind        `json:"kind"`
	ID         uint        `json:"id"`
	Confession *Confession `json:"confession,omitempty"`
	Crush      *Crush      `json:"crush,omitempty"`
	Spotted    *Spotted    `json:"spotted,omitempty"`
	Poll       *Poll       `json:"poll,omitempty"`
}
