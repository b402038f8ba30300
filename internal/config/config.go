package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultAdminPassword = "change-me-admin-password"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	UploadDir         string `env:"UPLOAD_DIR" envDefault:"static/uploads"`
	StaticURLBase     string `env:"STATIC_URL_BASE" envDefault:"/static/uploads"`
	DataDir           string `env:"DATA_DIR" envDefault:"data"`
	RankingSchemaFile string `env:"RANKING_SCHEMA_FILE"`
	RecentLaneSize    int    `env:"RECENT_LANE_SIZE" envDefault:"10"`
	TopLaneSize       int    `env:"TOP_LANE_SIZE" envDefault:"20"`
	MaxUploadSize     int64  `env:"MAX_UPLOAD_SIZE" envDefault:"20971520"`

	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword     string        `env:"ADMIN_PASSWORD" envDefault:"change-me-admin-password"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `env:"JWT_SECRET" envDefault:"change-me-jwt-secret"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"12h"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"false"`
	LoginRatePerMin   int           `env:"LOGIN_RATE_PER_MIN" envDefault:"10"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RankingClearOnDelete bool `env:"RANKING_CLEAR_ON_DELETE" envDefault:"false"`
	WatchUploads         bool `env:"WATCH_UPLOADS" envDefault:"true"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds the config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.UploadDir) == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if cfg.RecentLaneSize < 0 {
		return fmt.Errorf("RECENT_LANE_SIZE must be >= 0")
	}
	if cfg.TopLaneSize < 0 {
		return fmt.Errorf("TOP_LANE_SIZE must be >= 0")
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0")
	}
	if strings.TrimSpace(cfg.AdminUsername) == "" {
		return fmt.Errorf("ADMIN_USERNAME must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.LoginRatePerMin <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MIN must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
	}

	if cfg.IsProdLike() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if strings.TrimSpace(cfg.AdminPasswordHash) == "" {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD_HASH must be set")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

// IsProdLike reports whether APP_ENV names a production deployment.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

// AdminHash returns ADMIN_PASSWORD_HASH, or hashes ADMIN_PASSWORD when no
// hash is configured.
func (c *Config) AdminHash() ([]byte, error) {
	if c.AdminPasswordHash != "" {
		return []byte(c.AdminPasswordHash), nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash ADMIN_PASSWORD: %w", err)
	}
	return hash, nil
}

// UsesDefaultAdminPassword is true when the shipped placeholder password is in effect.
func (c *Config) UsesDefaultAdminPassword() bool {
	return c.AdminPasswordHash == "" && isEmptyOrDefault(c.AdminPassword, defaultAdminPassword)
}

func (c *Config) RankingPath() string {
	return filepath.Join(c.DataDir, "ranking_config.json")
}

func (c *Config) IdentitiesPath() string {
	return filepath.Join(c.DataDir, "identities.json")
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
