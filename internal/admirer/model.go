package admirer

import (
	"time"

	"gorm.io/gorm"
)

// Admirer 是一条仰慕记录：某个会话对一个目标代号表示了心意。
// (SessionID, TargetCode) 复合唯一，重复发送在存储层被挡下。
// Revealed是单向开关，一旦揭示就不会再回到匿名状态。
type Admirer struct {
	gorm.Model

	// SessionID 是发送者会话的UUID，列表接口永不序列化它
	SessionID string `gorm:"uniqueIndex:idx_adm_pair;not null;type:varchar(36)" json:"-"`

	// TargetCode 是被仰慕者的公开代号
	TargetCode string `gorm:"uniqueIndex:idx_adm_pair;index;not null;type:varchar(64)" json:"targetCode"`

	Message  string `json:"message"`
	Revealed bool   `gorm:"default:false" json:"revealed"`
}

// SendResult 是send操作的返回值。重复发送不是错误，
// 而是带AlreadySent标记的无操作结果。
type SendResult struct {
	ID          uint `json:"id"`
	AlreadySent bool `json:"alreadySent"`
}

// ListItem 是仰慕列表中的一项。发送者的会话UUID不在其中，
// 揭示令牌绑定 (记录ID, 目标代号)，供后续的揭示请求使用。
type ListItem struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Message     string    `json:"message"`
	Revealed    bool      `json:"revealed"`
	RevealToken string    `json:"revealToken"`
}
