package persona

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"gorm.io/gorm"
)

// UpdateRequest 描述一次部分更新，nil字段表示保持不变。
type UpdateRequest struct {
	Avatar *string
	Alias  *string
	Color  *string
}

// GetOrCreate 返回会话现有的身份；不存在时抽取一个新身份并持久化。
// 对同一会话的重复读取不会重新随机化。
func GetOrCreate(sessionID string) (*Persona, error) {
	var p Persona
	err := database.DB.Where("session_id = ?", sessionID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("无法查询会话 %s 的身份: %w", sessionID, err)
	}

	p = Persona{
		SessionID: sessionID,
		Avatar:    randomAvatar(),
		Alias:     randomAlias(),
		Color:     randomColor(),
	}
	if err := database.DB.Create(&p).Error; err != nil {
		// 并发的首次访问可能已经创建了身份，此时以已有记录为准
		if database.IsDuplicateKeyError(err) {
			if err := database.DB.Where("session_id = ?", sessionID).First(&p).Error; err != nil {
				return nil, fmt.Errorf("无法读取并发创建的身份: %w", err)
			}
			return &p, nil
		}
		return nil, fmt.Errorf("无法创建会话 %s 的身份: %w", sessionID, err)
	}

	refreshCacheEntry(&p)
	return &p, nil
}

// Update 实现部分更新的upsert语义：
// 身份不存在时，缺省字段用新的随机抽取补齐（而不是占位符）；
// 身份存在时，只覆盖调用方提供的字段。
func Update(sessionID string, req UpdateRequest) (*Persona, error) {
	var p Persona
	err := database.DB.Where("session_id = ?", sessionID).First(&p).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("无法查询会话 %s 的身份: %w", sessionID, err)
		}
		p = Persona{
			SessionID: sessionID,
			Avatar:    randomAvatar(),
			Alias:     randomAlias(),
			Color:     randomColor(),
		}
	}

	if req.Avatar != nil {
		p.Avatar = *req.Avatar
	}
	if req.Alias != nil {
		p.Alias = *req.Alias
	}
	if req.Color != nil {
		p.Color = *req.Color
	}

	if err := database.DB.Save(&p).Error; err != nil {
		return nil, fmt.Errorf("无法保存会话 %s 的身份: %w", sessionID, err)
	}

	refreshCacheEntry(&p)
	return &p, nil
}

// Regenerate 无条件重新抽取全部三个字段，身份不存在时等价于创建。
// 对应"换一个随机身份"的用户动作。
func Regenerate(sessionID string) (*Persona, error) {
	avatar := randomAvatar()
	alias := randomAlias()
	color := randomColor()
	return Update(sessionID, UpdateRequest{
		Avatar: &avatar,
		Alias:  &alias,
		Color:  &color,
	})
}

// refreshCacheEntry 将身份写穿到Redis镜像。
// SQLite是事实来源，镜像写入失败只告警，由下一次预热修复。
func refreshCacheEntry(p *Persona) {
	if !database.IsRedisHealthy() {
		return
	}
	info := Info{Avatar: p.Avatar, Alias: p.Alias, Color: p.Color}
	infoJSON, _ := json.Marshal(info)
	if err := database.RDB.HSet(database.Ctx, InfoKey, p.SessionID, infoJSON).Err(); err != nil {
		fmt.Printf("警告: 身份镜像写入失败 (session=%s): %v\n", p.SessionID, err)
	}
}

// BulkInfoFromCache 通过一次HMGet批量解析多个会话的身份。
// 缺失的会话填充缺省身份，供排行榜拼接使用。
func BulkInfoFromCache(sessionIDs []string) ([]Info, error) {
	infos := make([]Info, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return infos, nil
	}

	infoJSONs, err := database.RDB.HMGet(database.Ctx, InfoKey, sessionIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis批量获取身份数据: %w", err)
	}

	for i := range sessionIDs {
		if infoJSONs[i] == nil {
			infos[i] = PlaceholderInfo()
			continue
		}
		var info Info
		if err := json.Unmarshal([]byte(infoJSONs[i].(string)), &info); err != nil {
			infos[i] = PlaceholderInfo()
			continue
		}
		infos[i] = info
	}
	return infos, nil
}

// BulkInfoFromDB 是Redis不可用时的SQLite回退路径。
func BulkInfoFromDB(sessionIDs []string) ([]Info, error) {
	infos := make([]Info, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return infos, nil
	}

	var rows []Persona
	if err := database.DB.Where("session_id IN ?", sessionIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("无法从SQLite批量读取身份数据: %w", err)
	}

	byID := make(map[string]Info, len(rows))
	for _, p := range rows {
		byID[p.SessionID] = Info{Avatar: p.Avatar, Alias: p.Alias, Color: p.Color}
	}
	for i, id := range sessionIDs {
		if info, ok := byID[id]; ok {
			infos[i] = info
		} else {
			infos[i] = PlaceholderInfo()
		}
	}
	return infos, nil
}
