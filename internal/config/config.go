// Package config defines service configuration structures and loading hooks.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/pediscore/internal/domain/types"
)

// Bounds used by Validate.
const (
	maxDefaultAgeMonths = 216
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory assessment queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many request IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the history store.
	ShardCount int `koanf:"shard_count"`

	// HistoryLimit caps the assessments kept per patient; 0 keeps all.
	HistoryLimit int `koanf:"history_limit"`

	// MaxBatchSize caps POST /scores/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// DefaultAgeMonths is assumed when a request has no age.
	DefaultAgeMonths float64 `koanf:"default_age_months"`

	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// CompositeWeights overrides composite risk weights by score type.
	CompositeWeights map[string]float64 `koanf:"composite_weights"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         50_000,
		ShardCount:         16,
		HistoryLimit:       500,
		MaxBatchSize:       100,
		DefaultAgeMonths:   102,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(strings.TrimSpace(c.Addr) != "", "addr must not be empty")
	check(c.QueueSize > 0, "queue_size must be positive, got %d", c.QueueSize)
	check(c.WorkerCount > 0, "worker_count must be positive, got %d", c.WorkerCount)
	check(c.DedupeSize > 0, "dedupe_size must be positive, got %d", c.DedupeSize)
	check(c.ShardCount > 0, "shard_count must be positive, got %d", c.ShardCount)
	check(c.HistoryLimit >= 0, "history_limit must not be negative, got %d", c.HistoryLimit)
	check(c.MaxBatchSize > 0, "max_batch_size must be positive, got %d", c.MaxBatchSize)
	check(c.DefaultAgeMonths >= 0 && c.DefaultAgeMonths <= maxDefaultAgeMonths,
		"default_age_months must be within [0, %d], got %g", maxDefaultAgeMonths, c.DefaultAgeMonths)

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}

	for name, w := range c.CompositeWeights {
		_, ok := types.ParseScoreType(name)
		check(ok, "composite_weights: unknown score type %q", name)
		check(w >= 0, "composite_weights.%s must not be negative, got %g", name, w)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
