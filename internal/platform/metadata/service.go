package metadata

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue 从metadata表中读取一个键的值。
// 键不存在时返回空字符串，这是一个合法的默认值。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 在一个事务中创建或更新一个键的值。
func SetValue(db *gorm.DB, key, value string) error {
	// 使用GORM的OnConflict子句实现原子的upsert
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// GetLastMirroredEventID 读取最近一次快照确认的镜像水位线。
func GetLastMirroredEventID() (uint, error) {
	value, err := GetValue(database.DB, LastMirroredEventIDKey)
	if err != nil {
		return 0, fmt.Errorf("无法读取镜像水位线: %w", err)
	}
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("镜像水位线格式无效: %w", err)
	}
	return uint(id), nil
}

// SetLastMirroredEventID 在给定事务中持久化镜像水位线。
func SetLastMirroredEventID(db *gorm.DB, id uint) error {
	return SetValue(db, LastMirroredEventIDKey, strconv.FormatUint(uint64(id), 10))
}
