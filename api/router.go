package api

import (
	"github.com/CampusWhisper/campus-whisper-backend/internal/admirer"
	"github.com/CampusWhisper/campus-whisper-backend/internal/bookmark"
	"github.com/CampusWhisper/campus-whisper-backend/internal/content"
	"github.com/CampusWhisper/campus-whisper-backend/internal/leaderboard"
	"github.com/CampusWhisper/campus-whisper-backend/internal/persona"
	"github.com/CampusWhisper/campus-whisper-backend/internal/report"
	"github.com/CampusWhisper/campus-whisper-backend/internal/session"
	"github.com/CampusWhisper/campus-whisper-backend/internal/streak"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 身份相关：首次访问就发放会话Cookie
		personaRoutes := api.Group("/persona",
			session.EnsureSessionCookieMiddleware(), session.LoadSessionMiddleware())
		{
			personaRoutes.GET("/me", persona.GetMyPersona)
			personaRoutes.PATCH("/me", persona.UpdateMyPersona)
			personaRoutes.POST("/me/regenerate", persona.RegenerateMyPersona)
		}

		// 内容发布与反应。写入口也挂Ensure中间件：
		// 新访客的第一个动作就是发帖时，当场发放Cookie而不是报错
		sessionChain := []gin.HandlerFunc{
			session.EnsureSessionCookieMiddleware(), session.LoadSessionMiddleware(),
		}
		contentRoutes := api.Group("/content")
		{
			postRoutes := contentRoutes.Group("", sessionChain...)
			postRoutes.POST("/confessions", content.CreateConfessionHandler)
			postRoutes.POST("/crushes", content.CreateCrushHandler)
			postRoutes.POST("/spotted", content.CreateSpottedHandler)
			postRoutes.POST("/polls", content.CreatePollHandler)
			contentRoutes.POST("/confessions/:id/react", content.ReactHandler)
			contentRoutes.GET("/featured", content.GetFeaturedHandler)
		}

		// 连签相关
		streakRoutes := api.Group("/streaks")
		{
			streakRoutes.GET("/me", session.LoadSessionMiddleware(), streak.GetMyStreak)
			streakRoutes.GET("/top", streak.GetTopStreaks)
		}

		// 排行榜相关
		leaderboardRoutes := api.Group("/leaderboard")
		{
			leaderboardRoutes.GET("/:category", leaderboard.GetLeaderboard)
			leaderboardRoutes.GET("/:category/me", session.LoadSessionMiddleware(), leaderboard.GetMyLeaderboardRank)
		}

		// 收藏相关
		bookmarkRoutes := api.Group("/bookmarks", sessionChain...)
		{
			bookmarkRoutes.POST("/toggle", bookmark.ToggleBookmark)
			bookmarkRoutes.GET("/status/:type/:id", bookmark.GetBookmarkStatus)
			bookmarkRoutes.GET("", bookmark.ListMyBookmarks)
		}

		// 仰慕相关
		admirerRoutes := api.Group("/admirers")
		{
			admirerRoutes.POST("",
				session.EnsureSessionCookieMiddleware(), session.LoadSessionMiddleware(),
				admirer.SendAdmiration)
			admirerRoutes.GET("/:code/count", admirer.GetAdmirerCount)
			admirerRoutes.GET("/:code", admirer.ListAdmirers)
			admirerRoutes.POST("/:code/reveal", admirer.RevealAdmirer)
		}

		// 报告相关
		api.GET("/report/me", session.LoadSessionMiddleware(), report.GetMyReport)
	}
}
