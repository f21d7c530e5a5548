package persona

import (
	"net/http"

	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/gin-gonic/gin"
)

// PersonaResponse 是身份相关API的统一响应模型
type PersonaResponse struct {
	Avatar string `json:"avatar"`
	Alias  string `json:"alias"`
	Color  string `json:"color"`
}

// UpdateRequestBody 定义了部分更新身份时请求体的JSON结构。
// 缺省的字段保持不变（身份不存在时用随机抽取补齐）。
type UpdateRequestBody struct {
	Avatar *string `json:"avatar"`
	Alias  *string `json:"alias"`
	Color  *string `json:"color"`
}

func formatPersona(p *Persona) PersonaResponse {
	return PersonaResponse{
		Avatar: p.Avatar,
		Alias:  p.Alias,
		Color:  p.Color,
	}
}

// GetMyPersona 返回当前会话的身份，首次访问时懒创建
func GetMyPersona(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	p, err := GetOrCreate(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取匿名身份失败"})
		return
	}
	c.JSON(http.StatusOK, formatPersona(p))
}

// UpdateMyPersona 部分更新当前会话的身份
func UpdateMyPersona(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	var body UpdateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := session.ActivateSession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "激活会话失败"})
		return
	}

	p, err := Update(sessionID, UpdateRequest{
		Avatar: body.Avatar,
		Alias:  body.Alias,
		Color:  body.Color,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新匿名身份失败"})
		return
	}
	c.JSON(http.StatusOK, formatPersona(p))
}

// RegenerateMyPersona 为当前会话重新抽取一个完整的随机身份
func RegenerateMyPersona(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	if err := session.ActivateSession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "激活会话失败"})
		return
	}

	p, err := Regenerate(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重新生成匿名身份失败"})
		return
	}
	c.JSON(http.StatusOK, formatPersona(p))
}
