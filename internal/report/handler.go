package report

import (
	"net/http"

	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/gin-gonic/gin"
)

// GetMyReport 返回当前会话的参与度报告
func GetMyReport(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	report, err := GenerateEngagementReport(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成报告失败"})
		return
	}
	c.JSON(http.StatusOK, report)
}
