package config

import (
	"fmt"
	"os"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

type JWTConfig struct {
	Secret     []byte
	Expiration time.Duration

	usingDefaultSecret bool
}

func loadJWT() (JWTConfig, error) {
	cfg := JWTConfig{
		Secret:     []byte(os.Getenv("JWT_SECRET")),
		Expiration: 24 * time.Hour,
	}
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte(defaultJWTSecret)
		cfg.usingDefaultSecret = true
	}

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("JWT_EXPIRATION must be positive")
		}
		cfg.Expiration = d
	}
	return cfg, nil
}
