// Package app wires configuration, dependency construction and the daily
// run loop around the pipeline.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"optflow/internal/archive"
)

// ErrInvalidConfig wraps configuration validation failures.
var ErrInvalidConfig = errors.New("app: invalid configuration")

// Config holds application configuration from env (.env is loaded when
// present). Field constraints are enforced on load.
type Config struct {
	APIKey         string        `validate:"required"`
	BaseURL        string        `validate:"omitempty,url"`
	RatePerSec     float64       `validate:"gt=0"`
	DataDir        string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	JobsFile       string        `validate:"required"`
	Span           float64       `validate:"gte=0"`
	MaxDTE         int           `validate:"gte=0"`
	Workers        int           `validate:"gte=1,lte=64"`
	FetchTimeout   time.Duration `validate:"gt=0"`
	DailyRunHour   int           `validate:"gte=0,lte=23"`
	DailyRunMinute int           `validate:"gte=0,lte=59"`
}

// LoadConfig reads config from environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:         os.Getenv("MASSIVE_API_KEY"),
		BaseURL:        os.Getenv("MASSIVE_BASE_URL"),
		RatePerSec:     getEnvFloat("RATE_LIMIT_PER_SEC", 4.5),
		DataDir:        getEnv("DATA_DIR", "data"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JobsFile:       getEnv("JOBS_FILE", "jobs.yaml"),
		Span:           getEnvFloat("MONEYNESS_SPAN", 0.20),
		MaxDTE:         getEnvInt("MAX_DTE", 90),
		Workers:        getEnvInt("WORKERS", 1),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 5*time.Minute),
		DailyRunHour:   getEnvInt("DAILY_RUN_HOUR", 0),
		DailyRunMinute: getEnvInt("DAILY_RUN_MINUTE", 30),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := time.ParseDuration(s); err == nil {
			return v
		}
	}
	return def
}

// RawStore returns the landing archive under DataDir.
func (c *Config) RawStore() archive.Store {
	return archive.Store{Root: filepath.Join(c.DataDir, "raw")}
}

// ProcessedStore returns the validated archive under DataDir.
func (c *Config) ProcessedStore() archive.Store {
	return archive.Store{Root: filepath.Join(c.DataDir, "processed")}
}

// ProgressPath returns the path to the last-completed-date file.
func (c *Config) ProgressPath() string {
	return filepath.Join(c.DataDir, "raw", ".progress.json")
}
