package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	// BaseURL 对外可达地址，拼进确认邮件的链接里
	BaseURL string
	HTTP    HTTP
}

type Log struct {
	Level string
	JSON  bool
}

type Session struct {
	Secret     string
	Issuer     string
	CookieName string
	// TTLMin 会话有效期；RememberTTLMin 勾选“记住我”后的持久 Cookie 有效期
	TTLMin         int
	RememberTTLMin int
	CookieSecure   bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type SMTP struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

type Register struct {
	// RequireConfirmedAccount 开启后注册成功不直接登录，先走邮件确认
	RequireConfirmedAccount bool
	ConfirmTokenTTLMin      int
}

type Config struct {
	App      App
	Log      Log
	Session  Session
	Redis    Redis `mapstructure:"redis"`
	DB       DB
	SMTP     SMTP `mapstructure:"smtp"`
	Register Register
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("session.cookiename", "ump_session")
	v.SetDefault("session.ttlmin", 60)
	v.SetDefault("session.rememberttlmin", 60*24*14)
	v.SetDefault("register.confirmtokenttlmin", 60*24)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
