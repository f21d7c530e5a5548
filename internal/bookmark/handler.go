package bookmark

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/content"
	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/gin-gonic/gin"
)

type toggleRequestBody struct {
	ContentType string `json:"contentType" binding:"required"`
	ContentID   uint   `json:"contentId" binding:"required"`
}

// ToggleBookmark 翻转当前会话对一条内容的收藏状态
func ToggleBookmark(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	var body toggleRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	kind, ok := content.ParseKind(body.ContentType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的内容种类"})
		return
	}

	if err := session.ActivateSession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "激活会话失败"})
		return
	}

	result, err := Toggle(sessionID, kind, body.ContentID)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "内容不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "收藏操作失败"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBookmarkStatus 查询当前会话是否收藏了指定内容
func GetBookmarkStatus(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	kind, ok := content.ParseKind(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的内容种类"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的内容ID"})
		return
	}

	bookmarked, err := IsBookmarked(sessionID, kind, uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询收藏状态失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

// ListMyBookmarks 分页返回当前会话的收藏列表
func ListMyBookmarks(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, err := ListMine(sessionID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取收藏列表失败"})
		return
	}

	count, err := CountMine(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计收藏数失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": count,
	})
}
