package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DiscordToken  string
	TranslatorKey string
	Database      DatabaseConfig
	Relay         RelayConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// RelayConfig holds relay behavior settings
type RelayConfig struct {
	CategoryName  string
	HomeLanguage  string
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Workers       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	idleTimeout, err := getEnvDuration("RELAY_IDLE_TIMEOUT", 240*time.Minute)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := getEnvDuration("RELAY_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("RELAY_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		TranslatorKey: os.Getenv("TRANSLATOR_KEY"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "localizer"),
			User:     getEnv("DB_USER", "localizer"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Relay: RelayConfig{
			CategoryName:  getEnv("RELAY_CATEGORY", "localized"),
			HomeLanguage:  getEnv("RELAY_HOME_LANGUAGE", "en"),
			IdleTimeout:   idleTimeout,
			SweepInterval: sweepInterval,
			Workers:       workers,
		},
	}

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.TranslatorKey == "" {
		return nil, fmt.Errorf("TRANSLATOR_KEY is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Relay.Workers < 1 {
		return nil, fmt.Errorf("RELAY_WORKERS must be at least 1")
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid integer: %w", key, err)
	}
	return n, nil
}
