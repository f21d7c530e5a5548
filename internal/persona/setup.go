package persona

import (
	"encoding/json"
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Persona{}); err != nil {
		return fmt.Errorf("无法迁移persona表: %w", err)
	}
	fmt.Println("Persona数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有身份数据，并预热到Redis的Hash中
func WarmupCache() error {
	var personas []Persona
	if err := database.DB.Find(&personas).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取身份数据: %w", err)
	}

	pipe := database.RDB.Pipeline()
	// 先清空旧的缓存，确保数据一致性
	pipe.Del(database.Ctx, InfoKey)

	for _, p := range personas {
		info := Info{Avatar: p.Avatar, Alias: p.Alias, Color: p.Color}
		infoJSON, _ := json.Marshal(info)
		pipe.HSet(database.Ctx, InfoKey, p.SessionID, infoJSON)
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热身份数据到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 条身份数据到Redis。\n", len(personas))
	return nil
}

// PrimeCachedDB 是persona模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
