package admirer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/CampusWhisper/campus-whisper-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

type sendRequestBody struct {
	TargetCode string `json:"targetCode" binding:"required"`
	Message    string `json:"message"`
}

type revealRequestBody struct {
	RecordID    uint   `json:"recordId" binding:"required"`
	RevealToken string `json:"revealToken" binding:"required"`
}

// SendAdmiration 以当前会话的身份向一个目标代号发送仰慕
func SendAdmiration(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := session.ActivateSession(sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "激活会话失败"})
		return
	}

	result, err := Send(sessionID, body.TargetCode, body.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发送失败"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAdmirerCount 返回一个目标收到的未揭示仰慕数
func GetAdmirerCount(c *gin.Context) {
	targetCode := c.Param("code")
	if targetCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少目标代号"})
		return
	}

	count, err := CountForTarget(targetCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ListAdmirers 返回一个目标收到的仰慕列表（不含发送者身份）
func ListAdmirers(c *gin.Context) {
	targetCode := c.Param("code")
	if targetCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少目标代号"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := ListForTarget(targetCode, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取仰慕列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RevealAdmirer 校验揭示令牌后揭示一条仰慕记录的发送者
func RevealAdmirer(c *gin.Context) {
	targetCode := c.Param("code")
	if targetCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少目标代号"})
		return
	}

	var body revealRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	payload := token.RevealPayload{AdmirerID: body.RecordID, TargetCode: targetCode}
	if !token.ValidateRevealSignature(payload, body.RevealToken) {
		c.JSON(http.StatusForbidden, gin.H{"error": "揭示令牌无效"})
		return
	}

	sender, err := Reveal(body.RecordID, targetCode)
	if err != nil {
		if errors.Is(err, ErrAdmirerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "仰慕记录不存在"})
			return
		}
		if errors.Is(err, ErrWrongTarget) {
			c.JSON(http.StatusForbidden, gin.H{"error": "仰慕记录不属于该目标"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "揭示失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"senderSessionId": sender})
}
