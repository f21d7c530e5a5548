package content

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/config"
	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/gin-gonic/gin"
)

type confessionRequestBody struct {
	Body string `json:"body" binding:"required"`
}

type crushRequestBody struct {
	Body string `json:"body" binding:"required"`
}

type spottedRequestBody struct {
	Location string `json:"location"`
	Body     string `json:"body" binding:"required"`
}

type pollRequestBody struct {
	Question string `json:"question" binding:"required"`
	Options  string `json:"options" binding:"required"`
}

type reactionRequestBody struct {
	Reaction string `json:"reaction" binding:"required"`
}

// beginPost 执行所有发帖入口共享的前置流程：
// 激活会话、原子地增加发帖计数并检查频率上限。
// 成功时返回补偿句柄，调用方必须defer RollbackUnlessCommitted。
func beginPost(c *gin.Context) (string, *PostCompensator, bool) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return "", nil, false
	}

	if err := session.ActivateSession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "激活会话失败"})
		return "", nil, false
	}

	count, compensator, err := IncrementPostCount(sessionID, time.Now())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return "", nil, false
	}

	if count > config.Cfg.Engagement.DailyPostLimit {
		compensator.RollbackUnlessCommitted()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "今日发帖已达上限"})
		return "", nil, false
	}

	return sessionID, compensator, true
}

// CreateConfessionHandler 创建表白帖
func CreateConfessionHandler(c *gin.Context) {
	var body confessionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	sessionID, compensator, ok := beginPost(c)
	if !ok {
		return
	}
	defer compensator.RollbackUnlessCommitted()

	row, err := CreateConfession(sessionID, body.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发布失败"})
		return
	}
	compensator.Commit()
	c.JSON(http.StatusCreated, row)
}

// CreateCrushHandler 创建心动帖
func CreateCrushHandler(c *gin.Context) {
	var body crushRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	sessionID, compensator, ok := beginPost(c)
	if !ok {
		return
	}
	defer compensator.RollbackUnlessCommitted()

	row, err := CreateCrush(sessionID, body.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发布失败"})
		return
	}
	compensator.Commit()
	c.JSON(http.StatusCreated, row)
}

// CreateSpottedHandler 创建偶遇帖
func CreateSpottedHandler(c *gin.Context) {
	var body spottedRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	sessionID, compensator, ok := beginPost(c)
	if !ok {
		return
	}
	defer compensator.RollbackUnlessCommitted()

	row, err := CreateSpotted(sessionID, body.Location, body.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发布失败"})
		return
	}
	compensator.Commit()
	c.JSON(http.StatusCreated, row)
}

// CreatePollHandler 创建投票帖
func CreatePollHandler(c *gin.Context) {
	var body pollRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	sessionID, compensator, ok := beginPost(c)
	if !ok {
		return
	}
	defer compensator.RollbackUnlessCommitted()

	row, err := CreatePoll(sessionID, body.Question, body.Options)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发布失败"})
		return
	}
	compensator.Commit()
	c.JSON(http.StatusCreated, row)
}

// ReactHandler 给表白帖添加反应
func ReactHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的内容ID"})
		return
	}

	var body reactionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	reaction, ok := ParseReaction(body.Reaction)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的反应类型"})
		return
	}

	row, err := ReactToConfession(uint(id), reaction)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "内容不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "操作失败"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetFeaturedHandler 返回一条按权重轮换的精选表白帖
func GetFeaturedHandler(c *gin.Context) {
	row, err := PickFeaturedConfession()
	if err != nil {
		if errors.Is(err, ErrNoFeaturedCandidate) {
			c.JSON(http.StatusNotFound, gin.H{"error": "暂无精选内容"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取精选内容失败"})
		return
	}
	c.JSON(http.StatusOK, row)
}
