package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is read once at startup and treated as immutable.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	Store    string

	Database DatabaseConfig
	JWT      JWTConfig

	RolesFile string

	DefaultLimit int
	MaxLimit     int

	UploadDir      string
	UploadMaxBytes int64
	PublicBaseURL  string

	RateLimitRPS   float64
	RateLimitBurst int

	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Store:         strings.ToLower(getEnv("STORE", StorePostgres)),
		RolesFile:     os.Getenv("ROLES_FILE"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	cfg.PublicBaseURL = strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	var err error
	if cfg.DefaultLimit, err = getEnvInt("PAGINATION_DEFAULT_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.MaxLimit, err = getEnvInt("PAGINATION_MAX_LIMIT", 100); err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("UPLOAD_MAX_BYTES", 1<<20)
	if err != nil {
		return nil, err
	}
	cfg.UploadMaxBytes = int64(maxBytes)
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}

	cfg.Database = loadDatabase()
	if cfg.JWT, err = loadJWT(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("PAGINATION_DEFAULT_LIMIT must be positive")
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("PAGINATION_MAX_LIMIT cannot be lower than PAGINATION_DEFAULT_LIMIT")
	}
	if c.UploadMaxBytes < 1 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Store == StorePostgres && c.JWT.usingDefaultSecret {
		return fmt.Errorf("JWT_SECRET is required with the %s store", StorePostgres)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
