package bookmark

import (
	"errors"
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/content"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"gorm.io/gorm"
)

// Toggle 翻转一条收藏：存在则删除，不存在则创建。
// 整个find-then-write在一个事务里完成；并发的重复创建
// 会撞上唯一索引，按"已收藏"的无操作结果吸收。
func Toggle(sessionID string, kind content.Kind, contentID uint) (*ToggleResult, error) {
	// 先确认目标内容真实存在，避免收藏悬空引用
	if _, err := content.Lookup(kind, contentID); err != nil {
		return nil, err
	}

	var result ToggleResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing Bookmark
		err := tx.Where("session_id = ? AND content_type = ? AND content_id = ?",
			sessionID, kind, contentID).First(&existing).Error

		if err == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			result = ToggleResult{Bookmarked: false}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&Bookmark{
			SessionID:   sessionID,
			ContentType: kind,
			ContentID:   contentID,
		}).Error; err != nil {
			return err
		}
		result = ToggleResult{Bookmarked: true}
		return nil
	})
	if err != nil {
		if database.IsDuplicateKeyError(err) {
			// 并发的另一个toggle抢先创建了同一条收藏
			return &ToggleResult{Bookmarked: true}, nil
		}
		return nil, fmt.Errorf("收藏操作失败: %w", err)
	}
	return &result, nil
}

// IsBookmarked 查询当前会话是否收藏了指定内容
func IsBookmarked(sessionID string, kind content.Kind, contentID uint) (bool, error) {
	var count int64
	err := database.DB.Model(&Bookmark{}).
		Where("session_id = ? AND content_type = ? AND content_id = ?", sessionID, kind, contentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListMine 分页返回当前会话的收藏，最新的在前。
// 每条收藏的内容引用被解析为具体的内容行；目标内容
// 已被删除的收藏被跳过而不是让整页失败。
func ListMine(sessionID string, page, pageSize int) ([]ListItem, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var rows []Bookmark
	err := database.DB.Where("session_id = ?", sessionID).
		Order("created_at desc, id desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取收藏列表失败: %w", err)
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		ref, err := content.Lookup(row.ContentType, row.ContentID)
		if err != nil {
			if errors.Is(err, content.ErrContentNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, ListItem{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			Content:   ref,
		})
	}
	return items, nil
}

// CountMine 返回当前会话的收藏总数
func CountMine(sessionID string) (int64, error) {
	var count int64
	err := database.DB.Model(&Bookmark{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
