package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvRootURL = "CTOSITE_ROOT_URL"
	EnvOffline = "CTOSITE_OFFLINE"
	EnvSource  = "CTOSITE_SRC"
	EnvOutput  = "CTOSITE_OUT"
	EnvCache   = "CTOSITE_CACHE"
)

// LoadEnvFile loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first
// successfully parsed file. Existing process environment wins.
func LoadEnvFile() error {
	envPaths := []string{".env", ".env.local"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", "path", envPath)
			return nil
		}
	}
	return fmt.Errorf("no .env file found")
}

// ApplyEnv overlays recognized environment variables onto the configuration.
// CLI flags are applied after this, so the precedence is flags > env > file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRootURL); v != "" {
		c.RootURL = v
	}
	if v := os.Getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvCache); v != "" {
		c.Cache = v
	}
	if v := os.Getenv(EnvOffline); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Offline = b
		}
	}
}
