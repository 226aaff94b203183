// Package config loads runtime settings from an optional .env file and
// JUNIPER_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/JuniperStudy/core/errors"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
	"github.com/FocuswithJustin/JuniperStudy/internal/validation"
)

// MaxPageSize bounds PageSize.
const MaxPageSize = 1000

// Config holds all application configuration.
type Config struct {
	// Library
	LibraryPath  string
	DefaultBible string
	NotebookDSN  string

	// Search
	PageSize int
	Workers  int
	CacheTTL time.Duration

	// HTTP
	ListenAddr     string
	AllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LibraryPath:    "./library",
		DefaultBible:   "kjv",
		PageSize:       50,
		CacheTTL:       30 * time.Second,
		ListenAddr:     ":8080",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads envFile when it exists (a missing file is not an error) and
// then overlays JUNIPER_* variables on the defaults. Variables already set
// in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !isNotExist(err) {
			return nil, errors.NewIO("load env file", envFile, err)
		}
	}
	return FromEnv()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	d := Default()
	cfg := &Config{
		LibraryPath:    getEnv("JUNIPER_LIBRARY_PATH", d.LibraryPath),
		DefaultBible:   getEnv("JUNIPER_DEFAULT_BIBLE", d.DefaultBible),
		NotebookDSN:    getEnv("JUNIPER_NOTEBOOK_DSN", d.NotebookDSN),
		ListenAddr:     getEnv("JUNIPER_LISTEN_ADDR", d.ListenAddr),
		AllowedOrigins: d.AllowedOrigins,
		LogLevel:       getEnv("JUNIPER_LOG_LEVEL", d.LogLevel),
		LogFormat:      getEnv("JUNIPER_LOG_FORMAT", d.LogFormat),
	}
	if v := os.Getenv("JUNIPER_CORS_ORIGINS"); v != "" {
		cfg.AllowedOrigins = parseCORSOrigins(v)
	}

	var err error
	if cfg.PageSize, err = getEnvInt("JUNIPER_PAGE_SIZE", d.PageSize); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvInt("JUNIPER_WORKERS", d.Workers); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("JUNIPER_CACHE_TTL", d.CacheTTL); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field, returning the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LibraryPath) == "" {
		return errors.NewValidation("library_path", "must not be empty")
	}
	if err := validation.ValidateModuleID(c.DefaultBible); err != nil {
		return errors.NewValidation("default_bible", err.Error())
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return errors.NewValidation("page_size", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	if c.Workers < 0 {
		return errors.NewValidation("workers", "must not be negative")
	}
	if c.CacheTTL < 0 {
		return errors.NewValidation("cache_ttl", "must not be negative")
	}
	if c.ListenAddr == "" {
		return errors.NewValidation("listen_addr", "must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidation("log_level", err.Error())
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return errors.NewValidation("log_format", err.Error())
	}
	return nil
}

// InitLogging configures the global logger from LogLevel and LogFormat.
func (c *Config) InitLogging() error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.NewValidation("log_level", err.Error())
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return errors.NewValidation("log_format", err.Error())
	}
	logging.InitLogger(level, format)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.NewValidation(key, fmt.Sprintf("not an integer: %q", value))
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.NewValidation(key, fmt.Sprintf("not a duration: %q", value))
	}
	return d, nil
}

// parseCORSOrigins accepts a JSON array or a comma-separated list.
func parseCORSOrigins(value string) []string {
	var origins []string
	if err := json.Unmarshal([]byte(value), &origins); err == nil {
		return origins
	}
	parts := strings.Split(value, ",")
	origins = make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
