package bookmark

import (
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/content"
)

// Bookmark 是一条收藏记录。内容引用使用 (ContentType, ContentID)
// 的带标签形式，配合复合唯一索引保证同一会话对同一内容最多一条。
// 并发的重复toggle由唯一索引兜底，而不是应用层加锁。
type Bookmark struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	SessionID   string       `gorm:"uniqueIndex:idx_bm_ref;not null;type:varchar(36)" json:"-"`
	ContentType content.Kind `gorm:"uniqueIndex:idx_bm_ref;not null;type:varchar(16)" json:"contentType"`
	ContentID   uint         `gorm:"uniqueIndex:idx_bm_ref;not null" json:"contentId"`
}

// ToggleResult 是toggle操作的返回值
type ToggleResult struct {
	Bookmarked bool `json:"bookmarked"`
}

// ListItem 是收藏列表中的一项，内容引用已解析为具体内容行
type ListItem struct {
	ID        uint         `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Content   *content.Ref `json:"content"`
}
