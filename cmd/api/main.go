package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-management-app/internal/core/auth"
	"user-management-app/internal/core/config"
	"user-management-app/internal/core/database"
	"user-management-app/internal/core/logger"
	"user-management-app/internal/core/server"
	"user-management-app/internal/core/session"
	"user-management-app/internal/domain"
	"user-management-app/internal/mail"
	"user-management-app/internal/repo"
	"user-management-app/internal/service"
	"user-management-app/internal/transport/http/handler"
	"user-management-app/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 迁移：容器里 DB 常比应用晚起，重试 5 次、每次隔 5 秒
	if cfg.DB.AutoMigrate {
		if err := database.WaitAndMigrate(db, log, 5, 5*time.Second, &domain.User{}); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}

	// 会话：Cookie 里是签名 token，真正的会话记录在 Redis
	jwter := &auth.JWTer{
		Secret: []byte(cfg.Session.Secret),
		Issuer: cfg.Session.Issuer,
	}
	store := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Ping(ctx); err != nil {
			log.Fatal("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}
	sessions := session.NewManager(
		jwter, store,
		cfg.Session.CookieName,
		time.Duration(cfg.Session.TTLMin)*time.Minute,
		time.Duration(cfg.Session.RememberTTLMin)*time.Minute,
		cfg.Session.CookieSecure,
	)

	mailer := &mail.SMTPSender{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		SenderName:  cfg.SMTP.SenderName,
		SenderEmail: cfg.SMTP.SenderEmail,
	}

	// 依赖
	users := repo.NewUserRepo(db)
	registerSvc := service.NewRegisterService(users)
	authSvc := service.NewAuthService(users, cfg.Register.RequireConfirmedAccount)
	adminSvc := service.NewAdminService(users)

	router.Register(handler.NewRegisterHandler(
		registerSvc, sessions, mailer, jwter, log,
		cfg.App.BaseURL,
		cfg.Register.RequireConfirmedAccount,
		time.Duration(cfg.Register.ConfirmTokenTTLMin)*time.Minute,
	))
	router.Register(handler.NewAuthHandler(authSvc, sessions, log))
	router.Register(handler.NewUserHandler(adminSvc, sessions, log))

	r := router.NewAPIEngine(log, sessions)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
