// Package config sources pipeline configuration from the environment, with a
// .env file honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the extraction pipeline.
type Config struct {
	BatchSize      int
	MaxConcurrency int
	MaxRetries     int
	BaseDelay      time.Duration
	Model          string
	DiagDBPath     string
}

// FromEnv creates a configuration instance sourced from environment
// variables, falling back to the documented defaults.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BatchSize:      2,
		MaxConcurrency: 4,
		MaxRetries:     3,
		BaseDelay:      500 * time.Millisecond,
		Model:          getEnv("SOF_MODEL", ""),
		DiagDBPath:     getEnv("SOF_DIAG_DB", ""),
	}

	var err error
	if cfg.BatchSize, err = intEnv("SOF_BATCH_SIZE", cfg.BatchSize, 1); err != nil {
		return Config{}, err
	}
	if cfg.MaxConcurrency, err = intEnv("SOF_MAX_CONCURRENCY", cfg.MaxConcurrency, 1); err != nil {
		return Config{}, err
	}
	if cfg.MaxRetries, err = intEnv("SOF_MAX_RETRIES", cfg.MaxRetries, 0); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SOF_BASE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SOF_BASE_DELAY: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("SOF_BASE_DELAY must be positive, got %s", d)
		}
		cfg.BaseDelay = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback, min int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if n < min {
		return 0, fmt.Errorf("%s must be >= %d, got %d", key, min, n)
	}
	return n, nil
}
