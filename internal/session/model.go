package session

import (
	"time"

	"gorm.io/gorm"
)

// Session 定义了匿名会话在SQLite数据库中的持久化模型。
// 会话标识来自客户端Cookie，是整个互动子系统的唯一身份键，
// 不与任何认证账号绑定。
type Session struct {
	// UUID 是会话的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
