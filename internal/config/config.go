// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// SVES_CONFIG, then SVES_* environment variables.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store drivers understood by the repository factory.
const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr is the HTTP listen address.
	Addr string `koanf:"addr"`

	// StoreDriver picks the document store: memory, mysql or sqlite.
	StoreDriver string `koanf:"store_driver"`
	// StoreDSN is handed to the gorm driver; ignored for memory.
	StoreDSN string `koanf:"store_dsn"`

	// RedisAddr enables prediction notifications when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisChannel  string `koanf:"redis_channel"`

	// QueueSize bounds the prediction persistence queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of persistence workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the idempotency key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RateLimitRPS and RateLimitBurst configure the request token bucket.
	// A non-positive RPS disables rate limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
	// MaxInFlight caps concurrently served requests; 0 disables the cap.
	MaxInFlight int `koanf:"max_in_flight"`

	// MaxListLimit caps the limit query parameter of list endpoints.
	MaxListLimit int `koanf:"max_list_limit"`

	// PluginRunDelayMS simulates plugin processing time.
	PluginRunDelayMS int `koanf:"plugin_run_delay_ms"`

	// CORSAllowedOrigin is echoed in Access-Control-Allow-Origin.
	CORSAllowedOrigin string `koanf:"cors_allowed_origin"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":3000",
		StoreDriver:       StoreMemory,
		RedisChannel:      "sves:predictions",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
		RateLimitRPS:      200,
		RateLimitBurst:    400,
		MaxInFlight:       512,
		MaxListLimit:      1000,
		PluginRunDelayMS:  1000,
		CORSAllowedOrigin: "*",
	}
}

// PluginRunDelay returns PluginRunDelayMS as a duration.
func (c *Config) PluginRunDelay() time.Duration {
	return time.Duration(c.PluginRunDelayMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MaxInFlight < 0:
		return fmt.Errorf("%w: max_in_flight must not be negative", ErrInvalidConfig)
	case c.PluginRunDelayMS < 0:
		return fmt.Errorf("%w: plugin_run_delay_ms must not be negative", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreMySQL, StoreSQLite:
		if strings.TrimSpace(c.StoreDSN) == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
