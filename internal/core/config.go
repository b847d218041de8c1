package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for newswell
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Ingest   IngestConfig   `json:"ingest"`
}

// ServerConfig contains read-API server configuration
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// IngestConfig contains ingestion pipeline configuration
type IngestConfig struct {
	SourcesPath    string        `json:"sources_path"`
	DaysLimit      int           `json:"days_limit"`
	MaxWorkers     int           `json:"max_workers"`
	RetryAttempts  int           `json:"retry_attempts"`
	RetryDelay     time.Duration `json:"retry_delay"`
	FetchTimeout   time.Duration `json:"fetch_timeout"`
	UserAgent      string        `json:"user_agent"`
	UpdateInterval time.Duration `json:"update_interval"`
	SummarizerURL  string        `json:"summarizer_url"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("NEWSWELL_PORT", 4600),
			Host: getEnvOrDefault("NEWSWELL_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("NEWSWELL_DB_PATH", "./newswell.db"),
		},
		Ingest: IngestConfig{
			SourcesPath:    getEnvOrDefault("NEWSWELL_SOURCES_PATH", "./sources.json"),
			DaysLimit:      getEnvAsInt("NEWSWELL_DAYS_LIMIT", 7),
			MaxWorkers:     getEnvAsInt("NEWSWELL_MAX_WORKERS", 5),
			RetryAttempts:  getEnvAsInt("NEWSWELL_RETRY_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("NEWSWELL_RETRY_DELAY", 5*time.Second),
			FetchTimeout:   getEnvAsDuration("NEWSWELL_FETCH_TIMEOUT", 30*time.Second),
			UserAgent:      getEnvOrDefault("NEWSWELL_USER_AGENT", "newswell/1.0 (+feed aggregator)"),
			UpdateInterval: getEnvAsDuration("NEWSWELL_UPDATE_INTERVAL", 1*time.Hour),
			SummarizerURL:  getEnvOrDefault("NEWSWELL_SUMMARIZER_URL", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Ingest.SourcesPath == "" {
		return fmt.Errorf("sources path is required")
	}

	if c.Ingest.DaysLimit < 1 {
		return fmt.Errorf("days limit must be at least 1, got %d", c.Ingest.DaysLimit)
	}

	if c.Ingest.MaxWorkers < 1 || c.Ingest.MaxWorkers > 20 {
		return fmt.Errorf("max workers must be between 1 and 20, got %d", c.Ingest.MaxWorkers)
	}

	if c.Ingest.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Ingest.RetryAttempts)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}
