package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config groups the application configuration, read from the environment via Viper.
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	JWT     JWTConfig
	Session SessionConfig
}

type AppConfig struct {
	Env string // development, production
}

type HTTPConfig struct {
	Port string
}

func (c HTTPConfig) Addr() string {
	return ":" + c.Port
}

// DBConfig selects the persistence driver. sqlite is used for development and
// tests, mysql in production.
type DBConfig struct {
	Driver string // mysql | sqlite
	DSN    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// SessionConfig controls the device session registry.
// CheckMode "soft" logs invalid device sessions without blocking the request,
// "strict" rejects them.
type SessionConfig struct {
	IdleTimeout     time.Duration
	CheckMode       string // soft | strict
	RefreshInterval time.Duration
}

// Load reads .env (if present) and binds environment variables into a Config.
func Load() (*Config, error) {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "befoodie.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "12h")
	v.SetDefault("DEVICE_IDLE_TIMEOUT", "6h")
	v.SetDefault("DEVICE_CHECK_MODE", "soft")
	v.SetDefault("REFRESH_INTERVAL", "15s")

	cfg := &Config{
		App: AppConfig{
			Env: v.GetString("GIN_MODE"),
		},
		HTTP: HTTPConfig{
			Port: v.GetString("PORT"),
		},
		DB: DBConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DB_DSN"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("TOKEN_TTL"),
		},
		Session: SessionConfig{
			IdleTimeout:     v.GetDuration("DEVICE_IDLE_TIMEOUT"),
			CheckMode:       v.GetString("DEVICE_CHECK_MODE"),
			RefreshInterval: v.GetDuration("REFRESH_INTERVAL"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Session.CheckMode != "soft" && cfg.Session.CheckMode != "strict" {
		return nil, fmt.Errorf("DEVICE_CHECK_MODE must be soft or strict, got %q", cfg.Session.CheckMode)
	}

	return cfg, nil
}

// InitDB opens the configured database.
func InitDB(cfg DBConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}
