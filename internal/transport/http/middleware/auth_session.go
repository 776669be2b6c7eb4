package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-management-app/internal/core/session"
)

const KeyUserID = "userId"

// AuthSession 校验会话 Cookie。未登录的管理端请求不报错，
// 按约定回 {redirectUrl:"/login"} 让前端跳登录页。
func AuthSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := m.Resolve(c)
		if !ok {
			m.SignOut(c)
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"redirectUrl": "/login"})
			return
		}
		c.Set(KeyUserID, uid)
		c.Next()
	}
}
