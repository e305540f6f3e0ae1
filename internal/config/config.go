// Package config loads olicloud settings from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// OLI Cloud connection
	APIRoot  string
	AuthRoot string
	Username string
	Password string

	// Flash polling
	PollInterval time.Duration
	MaxPolls     int

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Interactive enables confirmation prompts on cleanup.
	Interactive bool
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		APIRoot:  getEnv("OLICLOUD_API_ROOT", "https://api.olisystems.com"),
		AuthRoot: getEnv("OLICLOUD_AUTH_ROOT", ""),
		Username: getEnv("OLICLOUD_USERNAME", ""),
		Password: getEnv("OLICLOUD_PASSWORD", ""),

		PollInterval: parseDuration(getEnv("OLICLOUD_POLL_INTERVAL", "500ms"), 500*time.Millisecond),
		MaxPolls:     parseInt(getEnv("OLICLOUD_MAX_POLLS", "100"), 100),

		LogFile:  getEnv("OLICLOUD_LOG_FILE", "/tmp/olicloud.log"),
		LogLevel: parseLogLevel(getEnv("OLICLOUD_LOG_LEVEL", "INFO")),

		Interactive: getEnv("OLICLOUD_INTERACTIVE", "true") != "false",
	}
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	APIRoot      string `yaml:"api_root"`
	AuthRoot     string `yaml:"auth_root"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PollInterval string `yaml:"poll_interval"`
	MaxPolls     int    `yaml:"max_polls"`
	LogFile      string `yaml:"log_file"`
	LogLevel     string `yaml:"log_level"`
}

// ApplyFile overlays values from a YAML file onto cfg. Environment values
// win: only fields the environment left at their defaults are replaced.
func ApplyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.APIRoot != "" && os.Getenv("OLICLOUD_API_ROOT") == "" {
		cfg.APIRoot = fc.APIRoot
	}
	if fc.AuthRoot != "" && os.Getenv("OLICLOUD_AUTH_ROOT") == "" {
		cfg.AuthRoot = fc.AuthRoot
	}
	if fc.Username != "" && os.Getenv("OLICLOUD_USERNAME") == "" {
		cfg.Username = fc.Username
	}
	if fc.Password != "" && os.Getenv("OLICLOUD_PASSWORD") == "" {
		cfg.Password = fc.Password
	}
	if fc.PollInterval != "" && os.Getenv("OLICLOUD_POLL_INTERVAL") == "" {
		cfg.PollInterval = parseDuration(fc.PollInterval, cfg.PollInterval)
	}
	if fc.MaxPolls > 0 && os.Getenv("OLICLOUD_MAX_POLLS") == "" {
		cfg.MaxPolls = fc.MaxPolls
	}
	if fc.LogFile != "" && os.Getenv("OLICLOUD_LOG_FILE") == "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" && os.Getenv("OLICLOUD_LOG_LEVEL") == "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func parseInt(s string, defaultVal int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}
