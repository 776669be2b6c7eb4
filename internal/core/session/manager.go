package session

import (
	"time"

	"github.com/gin-gonic/gin"

	"user-management-app/internal/core/auth"
	"user-management-app/pkg/utils"
)

const PurposeSession = "session"

// Manager 负责会话 Cookie 的签发与吊销。
// Cookie 里只放签名 token（uid+sid），真正的会话在 Store 里。
type Manager struct {
	jwter       *auth.JWTer
	store       Store
	cookieName  string
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
}

func NewManager(jwter *auth.JWTer, store Store, cookieName string, ttl, rememberTTL time.Duration, secure bool) *Manager {
	return &Manager{
		jwter:       jwter,
		store:       store,
		cookieName:  cookieName,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		secure:      secure,
	}
}

// SignIn 建立新会话。persistent=false 时发浏览器会话级 Cookie（MaxAge=0）。
func (m *Manager) SignIn(c *gin.Context, uid string, persistent bool) error {
	ttl := m.ttl
	if persistent {
		ttl = m.rememberTTL
	}
	sid := utils.NewID()
	if err := m.store.Save(c.Request.Context(), sid, uid, ttl); err != nil {
		return err
	}
	token, err := m.jwter.Issue(uid, sid, PurposeSession, ttl)
	if err != nil {
		_ = m.store.Delete(c.Request.Context(), sid)
		return err
	}
	maxAge := 0
	if persistent {
		maxAge = int(ttl.Seconds())
	}
	c.SetCookie(m.cookieName, token, maxAge, "/", "", m.secure, true)
	return nil
}

// SignOut 吊销当前会话并清掉 Cookie。没有会话时也安全。
func (m *Manager) SignOut(c *gin.Context) {
	if token, err := c.Cookie(m.cookieName); err == nil {
		if claims, err := m.jwter.Parse(token); err == nil && claims.SID != "" {
			_ = m.store.Delete(c.Request.Context(), claims.SID)
		}
	}
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// Resolve 从请求 Cookie 还原当前用户 id。
// token 无效、会话被吊销、用途不符都算未登录。
func (m *Manager) Resolve(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	claims, err := m.jwter.Parse(token)
	if err != nil || claims.Purpose != PurposeSession || claims.SID == "" {
		return "", false
	}
	uid, ok, err := m.store.Get(c.Request.Context(), claims.SID)
	if err != nil || !ok || uid != claims.UID {
		return "", false
	}
	return uid, true
}
