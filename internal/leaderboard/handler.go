package leaderboard

import (
	"net/http"
	"strconv"

	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/platform/database"
	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/gin-gonic/gin"
)

const defaultLeaderboardLimit = 20

// LeaderboardEntryResponse 是排行榜API的单条响应
type LeaderboardEntryResponse struct {
	Rank   int     `json:"rank"`
	Avatar string  `json:"avatar"`
	Alias  string  `json:"alias"`
	Color  string  `json:"color"`
	Score  float64 `json:"score"`
}

// parseBoardParams 解析并校验类别与周期参数
func parseBoardParams(c *gin.Context) (Category, Period, bool) {
	category, ok := ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的积分类别: " + c.Param("category")})
		return "", "", false
	}
	periodParam := c.DefaultQuery("period", string(PeriodWeekly))
	period, ok := ParsePeriod(periodParam)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的统计周期: " + periodParam})
		return "", "", false
	}
	return category, period, true
}

// GetLeaderboard 返回指定类别和周期的排行榜，并拼接匿名身份
func GetLeaderboard(c *gin.Context) {
	category, period, ok := parseBoardParams(c)
	if !ok {
		return
	}

	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit参数无效"})
			return
		}
		limit = parsed
	}

	ranked, err := GetRankedEntries(category, period, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜数据失败"})
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

	responses := make([]LeaderboardEntryResponse, len(ranked))
	for i, r := range ranked {
		responses[i] = LeaderboardEntryResponse{
			Rank:   i + 1,
			Avatar: infos[i].Avatar,
			Alias:  infos[i].Alias,
			Color:  infos[i].Color,
			Score:  r.Score,
		}
	}
	c.JSON(http.StatusOK, responses)
}

// GetMyLeaderboardRank 返回当前会话在指定榜单中的名次
func GetMyLeaderboardRank(c *gin.Context) {
	category, period, ok := parseBoardParams(c)
	if !ok {
		return
	}

	sessionID := c.GetString(session.SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少会话身份"})
		return
	}

	myRank, err := GetMyRank(sessionID, category, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取名次失败"})
		return
	}
	c.JSON(http.StatusOK, myRank)
}
