package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Extract  ExtractConfig
	Pipeline PipelineConfig
	Archive  ArchiveConfig
	LogLevel slog.Level
}

// ExtractConfig holds extraction-related configuration
type ExtractConfig struct {
	BuyerKeyword string
	LexiconFile  string
	MaxPages     int // 0 = all pages
}

// PipelineConfig holds batch-related configuration
type PipelineConfig struct {
	Workers    int
	SkipHidden bool
}

// ArchiveConfig holds the optional run archive; an empty DSN disables it
type ArchiveConfig struct {
	DSN string
}

// LoadConfig loads configuration from environment variables, after applying a .env file
// from the working directory when one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config.dotenv.ignored", "error", err)
	}
	return &Config{
		Extract: ExtractConfig{
			BuyerKeyword: getEnv("INVOICE_BUYER_KEYWORD", ""),
			LexiconFile:  getEnv("INVOICE_LEXICON_FILE", ""),
			MaxPages:     getEnvAsInt("INVOICE_MAX_PAGES", 0),
		},
		Pipeline: PipelineConfig{
			Workers:    getEnvAsInt("INVOICE_WORKERS", 4),
			SkipHidden: getEnvAsBool("INVOICE_SKIP_HIDDEN", true),
		},
		Archive: ArchiveConfig{
			DSN: getEnv("INVOICE_DB_URL", ""),
		},
		LogLevel: getEnvAsLevel("INVOICE_LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(value))); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "INVOICE_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Extract.MaxPages < 0 {
		return NewAppError("CONFIG_ERROR", "INVOICE_MAX_PAGES must not be negative", ErrInvalidInput)
	}
	if c.Archive.DSN != "" && !strings.Contains(c.Archive.DSN, "://") {
		return NewAppError("CONFIG_ERROR", "INVOICE_DB_URL must be a sqlite:// or postgres:// URL", ErrInvalidInput)
	}
	return nil
}
