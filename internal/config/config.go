package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the pangram-webui server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Pangram  PangramConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Path string
}

type PangramConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DefaultDatabasePath is the history database file used when
// PANGRAM_DB_PATH is not set.
const DefaultDatabasePath = "pangram_history.db"

// Load reads configuration from environment variables and returns a validated Config.
// A missing or invalid required value is a startup error, never recoverable later.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PANGRAM_PORT", 8080),
			Env:  envString("PANGRAM_ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: DatabasePath(),
		},
		Pangram: PangramConfig{
			APIKey:  os.Getenv("PANGRAM_API_KEY"),
			BaseURL: envString("PANGRAM_BASE_URL", "https://text.api.pangram.com"),
			Timeout: envDuration("PANGRAM_TIMEOUT", 60*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath resolves the history database file from the environment.
// The CLI inspector only needs this, not the full (credentialed) Config.
func DatabasePath() string {
	return envString("PANGRAM_DB_PATH", DefaultDatabasePath)
}

func (c *Config) validate() error {
	if c.Pangram.APIKey == "" {
		return fmt.Errorf("PANGRAM_API_KEY is not set in environment variables")
	}

	if !strings.HasPrefix(c.Pangram.BaseURL, "http://") && !strings.HasPrefix(c.Pangram.BaseURL, "https://") {
		return fmt.Errorf("PANGRAM_BASE_URL must start with http:// or https://, got %q", c.Pangram.BaseURL)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PANGRAM_PORT must be a valid port number, got %d", c.Server.Port)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
