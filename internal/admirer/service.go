package admirer

import (
	"errors"
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/token"
	"gorm.io/gorm"
)

var (
	ErrAdmirerNotFound = errors.New("仰慕记录不存在")
	ErrWrongTarget     = errors.New("仰慕记录不属于该目标")
)

// Send 记录一次仰慕。同一会话对同一目标重复发送时，
// 返回带AlreadySent标记的原记录，不报错也不覆盖消息。
func Send(sessionID, targetCode, message string) (*SendResult, error) {
	row := &Admirer{
		SessionID:  sessionID,
		TargetCode: targetCode,
		Message:    message,
	}
	err := database.DB.Create(row).Error
	if err == nil {
		return &SendResult{ID: row.ID, AlreadySent: false}, nil
	}
	if !database.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("记录仰慕失败: %w", err)
	}

	var existing Admirer
	findErr := database.DB.Where("session_id = ? AND target_code = ?", sessionID, targetCode).
		First(&existing).Error
	if findErr != nil {
		return nil, fmt.Errorf("读取已有仰慕记录失败: %w", findErr)
	}
	return &SendResult{ID: existing.ID, AlreadySent: true}, nil
}

// CountForTarget 统计一个目标收到的、尚未揭示的仰慕数
func CountForTarget(targetCode string) (int64, error) {
	var count int64
	err := database.DB.Model(&Admirer{}).
		Where("target_code = ? AND revealed = ?", targetCode, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListForTarget 返回一个目标收到的仰慕，最新的在前。
// 每一项都带着绑定 (记录ID, 目标代号) 的揭示令牌，
// 发送者的会话UUID不出现在任何一项里。
func ListForTarget(targetCode string, limit int) ([]ListItem, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var rows []Admirer
	err := database.DB.Where("target_code = ?", targetCode).
		Order("created_at desc, id desc").
		Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取仰慕列表失败: %w", err)
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		signature, err := token.GenerateRevealSignature(token.RevealPayload{
			AdmirerID:  row.ID,
			TargetCode: targetCode,
		})
		if err != nil {
			return nil, fmt.Errorf("生成揭示令牌失败: %w", err)
		}
		items = append(items, ListItem{
			ID:          row.ID,
			CreatedAt:   row.CreatedAt,
			Message:     row.Message,
			Revealed:    row.Revealed,
			RevealToken: signature,
		})
	}
	return items, nil
}

// CountSentBy 统计一个会话发出过的仰慕数
func CountSentBy(sessionID string) (int64, error) {
	var count int64
	err := database.DB.Model(&Admirer{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reveal 揭示一条仰慕记录的发送者，返回发送者的会话UUID。
// 揭示是单向的：重复揭示是无操作，返回同样的结果；
// 记录不存在或不属于该目标时显式报错。
func Reveal(recordID uint, targetCode string) (string, error) {
	var sender string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var row Admirer
		if err := tx.First(&row, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdmirerNotFound
			}
			return err
		}
		if row.TargetCode != targetCode {
			return ErrWrongTarget
		}

		if !row.Revealed {
			if err := tx.Model(&row).UpdateColumn("revealed", true).Error; err != nil {
				return err
			}
		}
		sender = row.SessionID
		return nil
	})
	if err != nil {
		return "", err
	}
	return sender, nil
}
