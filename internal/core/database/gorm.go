package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = fmt.Errorf("database: unsupported driver")

type Opts struct {
	Driver             string // "mysql" / "postgres"
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
}

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dial = mysql.Open(o.DSN)
	default:
		return nil, ErrUnsupportedDriver
	}

	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)

	db = db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true, // 需要事务时手动开 Tx
	})
	return db, nil
}

// WaitAndMigrate 启动期迁移：先探测连通性再迁移，失败重试若干次。
// 容器编排下 DB 往往比应用晚就绪，这里兜住启动竞态。
func WaitAndMigrate(db *gorm.DB, l *zap.Logger, attempts int, delay time.Duration, models ...any) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		l.Info("applying migrations", zap.Int("attempt", i), zap.Int("max", attempts))
		err = tryMigrate(db, models...)
		if err == nil {
			l.Info("migrations applied")
			return nil
		}
		l.Error("migration attempt failed", zap.Int("attempt", i), zap.Error(err))
		if i < attempts {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("database: all migration attempts failed: %w", err)
}

func tryMigrate(db *gorm.DB, models ...any) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	return db.AutoMigrate(models...)
}
