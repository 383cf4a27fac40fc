// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken       string
	Admins         Admins
	BaseURL        string
	DatabaseURL    string
	Port           string
	RedisAddr      string
	MigrationsPath string
	UploadDir      string
	Currency       string
	LogLevel       string
}

// Load reads .env (if any) and the process environment. Every required
// variable that is missing is reported in a single error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		BotToken:       strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		BaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("BASE_URL")), "/"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Port:           strings.TrimSpace(os.Getenv("PORT")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		Currency:       getEnv("CURRENCY", "₽"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	adminList := os.Getenv("ADMIN_IDS")
	if strings.TrimSpace(adminList) == "" {
		adminList = os.Getenv("ADMIN_ID")
	}

	var missing []string
	if cfg.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if strings.TrimSpace(adminList) == "" {
		missing = append(missing, "ADMIN_IDS")
	}
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Port == "" {
		missing = append(missing, "PORT")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	admins, err := ParseAdmins(adminList)
	if err != nil {
		return nil, err
	}
	cfg.Admins = admins

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: must be numeric", cfg.Port)
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("invalid BASE_URL %q: must start with http:// or https://", cfg.BaseURL)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
