package streak

import (
	"net/http"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/gin-gonic/gin"
)

const defaultTopLimit = 10

// StreakResponse 是连签查询API的响应模型
type StreakResponse struct {
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	LastPostDate  string `json:"lastPostDate,omitempty"`
	TotalPosts    int    `json:"totalPosts"`
}

// TopStreakResponse 是连签排行API的单条响应
type TopStreakResponse struct {
	Rank          int    `json:"rank"`
	Avatar        string `json:"avatar"`
	Alias         string `json:"alias"`
	Color         string `json:"color"`
	CurrentStreak int    `json:"currentStreak"`
}

// GetMyStreak 返回当前会话的连签快照
func GetMyStreak(c *gin.Context) {
	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	snapshot, err := GetStreak(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取连签数据失败"})
		return
	}

	resp := StreakResponse{
		CurrentStreak: snapshot.CurrentStreak,
		LongestStreak: snapshot.LongestStreak,
		TotalPosts:    snapshot.TotalPosts,
	}
	if !snapshot.LastPostDate.IsZero() {
		resp.LastPostDate = snapshot.LastPostDate.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, resp)
}

// GetTopStreaks 返回连签排行榜，并拼接匿名身份
func GetTopStreaks(c *gin.Context) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit参数无效"})
			return
		}
		limit = parsed
	}

	ranked, err := TopStreaks(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取连签排行失败"})
		return
	}

	sessionIDs := make([]string, len(ranked))
	for i, r := range ranked {
		sessionIDs[i] = r.SessionID
	}

	var infos []persona.Info
	if database.IsRedisHealthy() {
		infos, err = persona.BulkInfoFromCache(sessionIDs)
	} else {
		infos, err = persona.BulkInfoFromDB(sessionIDs)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取匿名身份失败"})
		return
	}

	responses := make([]TopStreakResponse, len(ranked))
	for i, r := range ranked {
		responses[i] = TopStreakResponse{
			Rank:          i + 1,
			Avatar:        infos[i].Avatar,
			Alias:         infos[i].Alias,
			Color:         infos[i].Color,
			CurrentStreak: r.CurrentStreak,
		}
	}
	c.JSON(http.StatusOK, responses)
}
