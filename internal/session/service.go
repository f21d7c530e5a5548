package session

import (
	"errors"
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProvisionalSession 生成一个临时的、尚未持久化的新会话UUID。
// 这个UUID将被设置到cookie中，但此时尚未被"激活"。
func CreateProvisionalSession() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查一个字符串是否是合法的UUID格式。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsSessionActivated 检查一个给定的UUID是否已经被激活（即存在于持久化系统中）。
// 它只查询Redis缓存，以获得最高性能。
func IsSessionActivated(uuidStr string) (bool, error) {
	if uuidStr == "" {
		return false, nil
	}
	exists, err := database.RDB.SIsMember(database.Ctx, KnownSessionsKey, uuidStr).Result()
	if err != nil {
		return false, fmt.Errorf("检查Redis会话缓存时出错: %w", err)
	}
	return exists, nil
}

// ActivateSession 将一个临时的UUID正式持久化到数据库和缓存中。
// 会话在第一次执行写操作（发帖、收藏等）时才被激活。
// 这个操作是原子性的，如果缓存写入失败，数据库写入将被回滚。
func ActivateSession(uuidStr string) error {
	if !IsValidUUID(uuidStr) {
		return fmt.Errorf("会话ID格式无效: %s", uuidStr)
	}

	// 首先检查该会话是否已经被激活，避免重复写入
	activated, err := IsSessionActivated(uuidStr)
	if err != nil {
		return err
	}
	if activated {
		return nil // 会话已存在，无需操作
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("无法开始数据库事务: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	newSession := Session{UUID: uuidStr}
	if err := tx.Create(&newSession).Error; err != nil {
		tx.Rollback()
		// 如果是因为记录已存在而出错，这不是一个真正的错误
		if errors.Is(err, gorm.ErrDuplicatedKey) || database.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("无法在SQLite中创建新会话: %w", err)
	}

	// 尝试将新UUID添加到Redis缓存中
	if err := database.RDB.SAdd(database.Ctx, KnownSessionsKey, uuidStr).Err(); err != nil {
		// 如果Redis写入失败，回滚SQLite的写入，保证数据一致性
		tx.Rollback()
		return fmt.Errorf("无法将新会话 %s 添加到Redis缓存: %w", uuidStr, err)
	}

	return tx.Commit().Error
}
