package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-app/internal/core/session"
	"user-management-app/internal/service"
	resp "user-management-app/internal/transport/http/response"
)

// AuthHandler 登录/登出。登录成功才会刷新 last_login_time（列表的排序键）。
type AuthHandler struct {
	svc      *service.AuthService
	sessions *session.Manager
	log      *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, sessions *session.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, log: log}
}

func (h *AuthHandler) MountAPI(public, authed *gin.RouterGroup) {
	public.POST("/login", h.login)
	authed.POST("/logout", h.logout)
}

type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
	ReturnURL  string `json:"returnUrl"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}

	u, err := h.svc.Authenticate(in.Email, in.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"": "Invalid login attempt."}})
		return
	case errors.Is(err, service.ErrAccountBlocked):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"": "This account has been blocked."}})
		return
	case errors.Is(err, service.ErrEmailNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"": "You must confirm your email before you can sign in."}})
		return
	case err != nil:
		h.log.Error("login failed", zap.String("email", in.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, ""))
		return
	}

	if err := h.sessions.SignIn(c, u.ID, in.RememberMe); err != nil {
		h.log.Error("sign-in failed", zap.String("userId", u.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectUrl": returnURLOrRoot(in.ReturnURL)})
}

func (h *AuthHandler) logout(c *gin.Context) {
	h.sessions.SignOut(c)
	c.JSON(http.StatusOK, gin.H{"redirectUrl": loginURL})
}
