package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-app/internal/core/session"
	"user-management-app/internal/domain"
	"user-management-app/internal/service"
	"user-management-app/internal/transport/http/middleware"
	resp "user-management-app/internal/transport/http/response"
)

const (
	loginURL = "/login"

	msgSelfBlocked  = "You have blocked yourself and have been automatically logged out."
	msgUsersBlocked = "Users have been successfully blocked."
)

// UserHandler 管理端：用户列表 + 批量封禁/解封/删除。
type UserHandler struct {
	svc      *service.AdminService
	sessions *session.Manager
	log      *zap.Logger
}

func NewUserHandler(svc *service.AdminService, sessions *session.Manager, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions, log: log}
}

func (h *UserHandler) MountAPI(_, authed *gin.RouterGroup) {
	authed.GET("/users", h.list)
	authed.POST("/users/block", h.block)
	authed.POST("/users/unblock", h.unblock)
	authed.POST("/users/delete", h.delete)
}

type idsReq struct {
	UserIDs []string `json:"userIds"`
}

func (h *UserHandler) list(c *gin.Context) {
	users, err := h.svc.List()
	if err != nil {
		h.internal(c, "list users failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) block(c *gin.Context) {
	var in idsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	// 先判定是否有“封自己”，再统一执行封禁：自己那行和别人走同一条路径
	selfTargeted, err := h.svc.Block(actor.ID, in.UserIDs)
	if err != nil {
		h.internal(c, "block users failed", err)
		return
	}
	if selfTargeted {
		h.sessions.SignOut(c)
		c.JSON(http.StatusOK, gin.H{"redirectUrl": loginURL, "message": msgSelfBlocked})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgUsersBlocked})
}

func (h *UserHandler) unblock(c *gin.Context) {
	var in idsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	if _, ok := h.requireActor(c); !ok {
		return
	}
	if err := h.svc.Unblock(in.UserIDs); err != nil {
		h.internal(c, "unblock users failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) delete(c *gin.Context) {
	var in idsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	selfDeleted, err := h.svc.Delete(actor.ID, in.UserIDs)
	if err != nil {
		h.internal(c, "delete users failed", err)
		return
	}
	if selfDeleted {
		h.sessions.SignOut(c)
		c.JSON(http.StatusOK, gin.H{"redirectUrl": loginURL})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requireActor 变更前的守卫：会话里的用户必须仍然存在且未被封禁，
// 否则吊销会话并让前端回登录页。防的是拿着旧 Cookie 的已封禁用户继续发指令。
func (h *UserHandler) requireActor(c *gin.Context) (*domain.User, bool) {
	uid := c.GetString(middleware.KeyUserID)
	actor, err := h.svc.Actor(uid)
	if err != nil {
		h.internal(c, "resolve acting user failed", err)
		return nil, false
	}
	if actor == nil || actor.IsBlocked {
		h.sessions.SignOut(c)
		c.JSON(http.StatusOK, gin.H{"redirectUrl": loginURL})
		return nil, false
	}
	return actor, true
}

func (h *UserHandler) internal(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.String("rid", c.GetString(middleware.KeyRequestID)), zap.Error(err))
	c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, ""))
}
