package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-app/internal/core/auth"
	"user-management-app/internal/core/session"
	"user-management-app/internal/mail"
	"user-management-app/internal/service"
	resp "user-management-app/internal/transport/http/response"
)

const purposeConfirm = "confirm"

type RegisterHandler struct {
	svc              *service.RegisterService
	sessions         *session.Manager
	mailer           mail.Sender
	jwter            *auth.JWTer
	log              *zap.Logger
	baseURL          string
	requireConfirmed bool
	confirmTTL       time.Duration
}

func NewRegisterHandler(
	svc *service.RegisterService,
	sessions *session.Manager,
	mailer mail.Sender,
	jwter *auth.JWTer,
	log *zap.Logger,
	baseURL string,
	requireConfirmed bool,
	confirmTTL time.Duration,
) *RegisterHandler {
	return &RegisterHandler{
		svc:              svc,
		sessions:         sessions,
		mailer:           mailer,
		jwter:            jwter,
		log:              log,
		baseURL:          baseURL,
		requireConfirmed: requireConfirmed,
		confirmTTL:       confirmTTL,
	}
}

func (h *RegisterHandler) MountAPI(public, _ *gin.RouterGroup) {
	public.GET("/register", h.getForm)
	public.POST("/register", h.register)
	public.GET("/register/confirmation", h.confirmationPending)
	public.GET("/register/confirm", h.confirm)
}

type registerReq struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ReturnURL       string `json:"returnUrl"`
}

func (h *RegisterHandler) getForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"requireConfirmedAccount": h.requireConfirmed,
		"returnUrl":               returnURLOrRoot(c.Query("returnUrl")),
	})
}

func (h *RegisterHandler) register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	returnURL := returnURLOrRoot(in.ReturnURL)

	u, fieldErrs, err := h.svc.Register(service.RegisterInput{
		UserName:        in.UserName,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	})
	if err != nil {
		h.registrationFailed(c, in.Email, err)
		return
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	h.log.Info("user created a new account with password", zap.String("userId", u.ID))

	if h.requireConfirmed {
		if err := h.sendConfirmation(u.ID, u.Email); err != nil {
			h.registrationFailed(c, in.Email, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"redirectUrl": "/register/confirmation",
			"email":       u.Email,
			"returnUrl":   returnURL,
		})
		return
	}

	if err := h.sessions.SignIn(c, u.ID, false); err != nil {
		h.registrationFailed(c, in.Email, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectUrl": returnURL})
}

func (h *RegisterHandler) confirmationPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"email":     c.Query("email"),
		"returnUrl": returnURLOrRoot(c.Query("returnUrl")),
		"message":   "Please check your email to confirm your account.",
	})
}

func (h *RegisterHandler) confirm(c *gin.Context) {
	claims, err := h.jwter.Parse(c.Query("token"))
	if err != nil || claims.Purpose != purposeConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"": "Invalid or expired confirmation link."}})
		return
	}
	if err := h.svc.ConfirmEmail(claims.UID); err != nil {
		h.log.Error("email confirmation failed", zap.String("userId", claims.UID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"": "Invalid or expired confirmation link."}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirectUrl": "/login"})
}

func (h *RegisterHandler) sendConfirmation(uid, email string) error {
	token, err := h.jwter.Issue(uid, "", purposeConfirm, h.confirmTTL)
	if err != nil {
		return err
	}
	link := h.baseURL + "/register/confirm?token=" + url.QueryEscape(token)
	body := fmt.Sprintf(
		`Please confirm your account by <a href="%s">clicking here</a>.`, link)
	return h.mailer.Send(email, "Confirm your email", body)
}

// registrationFailed 对外只给笼统提示，细节只进日志（带尝试注册的邮箱）
func (h *RegisterHandler) registrationFailed(c *gin.Context, email string, err error) {
	h.log.Error("error during user registration", zap.String("email", email), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"errors": gin.H{"": "An unexpected error occurred during registration."},
	})
}

func returnURLOrRoot(s string) string {
	if s == "" {
		return "/"
	}
	return s
}
