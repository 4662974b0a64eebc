package config

import (
	"fmt"
	"log/slog"
	"os"

	"article-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     getEnv("DB_NAME", "articles"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// DSN prefers DATABASE_URL over the individual DB_* settings.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// InitDB opens the database and migrates the article and user tables.
func InitDB(cfg DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		// every write touches exactly one row
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Article{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Info("database ready", "host", cfg.Host, "name", cfg.Name)
	return db, nil
}
