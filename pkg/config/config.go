package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Export ExportConfig
	JWT    JWTConfig
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"3000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "development")
}

type DBConfig struct {
	Driver        string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN           string        `envconfig:"DATABASE_URL" default:"StockOpname.db"`
	MaxOpenConns  int           `envconfig:"DB_MAX_OPEN_CONNS" default:"1"`
	SlowThreshold time.Duration `envconfig:"DB_SLOW_THRESHOLD" default:"1s"`
}

type ExportConfig struct {
	Dir           string        `envconfig:"EXPORT_DIR" default:"exports"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	ShareLinkTTL  time.Duration `envconfig:"SHARE_LINK_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`
	Issuer string `envconfig:"JWT_ISSUER" default:"go-stock-opname"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env opsional, environment tetap menang
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("EXPORT_DIR is required")
	}
	if c.Export.ShareLinkTTL <= 0 {
		return fmt.Errorf("SHARE_LINK_TTL must be positive")
	}
	return nil
}
