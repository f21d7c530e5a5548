package session

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName   = "session-id"
	CookieMaxAge = 365 * 24 * 60 * 60
	SessionIDKey = "sessionID"
)

// EnsureSessionCookieMiddleware 确保访客的浏览器中有一个格式正确的session-id cookie。
// 如果没有或格式不正确，它会生成一个新的临时UUID并设置cookie。
func EnsureSessionCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(CookieName)

		// 如果Cookie不存在，或存在但格式不正确，则分发一个新的
		if err != nil || !IsValidUUID(sessionID) {
			if err != http.ErrNoCookie {
				fmt.Printf("检测到无效的会话Cookie: %s, err: %v\n", sessionID, err)
			}
			provisionalID, err := CreateProvisionalSession()
			if err != nil {
				fmt.Printf("创建临时会话ID时发生错误: %v\n", err)
			} else {
				c.SetCookie(CookieName, provisionalID, CookieMaxAge, "/", "", false, true)
				// 同一请求的后续处理也使用新分发的ID
				c.Request.AddCookie(&http.Cookie{Name: CookieName, Value: provisionalID})
			}
		}

		c.Next()
	}
}

// LoadSessionMiddleware 读取cookie并将其值放入Gin上下文中。
// 下游handler通过 c.GetString(SessionIDKey) 获得解析后的会话身份。
func LoadSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(CookieName)
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}
