// Package config loads service configuration from environment variables
// and the category allow-list file.
package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "votegate/pkg/config"
)

// Config holds all runtime configuration for the vote gateway.
type Config struct {
	// ListenAddr is the address of the public API server.
	// Default: ":8080"
	ListenAddr string

	// MetricsAddr is the address of the internal metrics server.
	// Default: ":9090"
	MetricsAddr string

	// RedisAddr is the address of the durable cache tier.
	// Empty disables the durable tier; the service runs on the local
	// tier only.
	RedisAddr string

	// RedisPassword authenticates against Redis when set.
	RedisPassword string

	// RedisDB selects the Redis logical database. Default: 0
	RedisDB int

	// ThrottleInterval is the minimum spacing between submissions from
	// one identity for one category. Default: 2s
	ThrottleInterval time.Duration

	// DedupWindow is how long one identity's vote in a category blocks
	// repeats. Default: 24h
	DedupWindow time.Duration

	// DedupMode selects how duplicates are enforced at write time:
	// "cache" trusts the dedup keys, "marker" writes a compensating
	// ledger marker around the append. Default: "cache"
	DedupMode string

	// SuccessMessage is returned to the client on acceptance.
	SuccessMessage string

	// FloodRPS and FloodBurst bound raw request volume per client IP
	// before the submission pipeline runs. Defaults: 5 rps, burst 10.
	FloodRPS   float64
	FloodBurst int

	// CategoriesFile is the path to the category allow-list.
	// Default: "config/categories.yaml"
	CategoriesFile string

	// RequestTimeout bounds one request end to end. Default: 10s
	RequestTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration
}

// DedupMode values.
const (
	DedupModeCache  = "cache"
	DedupModeMarker = "marker"
)

// Load reads configuration from the environment, applying defaults for
// anything unset, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:       pkgconfig.GetEnvString("LISTEN_ADDR", ":8080"),
		MetricsAddr:      pkgconfig.GetEnvString("METRICS_ADDR", ":9090"),
		RedisAddr:        pkgconfig.GetEnvString("REDIS_ADDR", ""),
		RedisPassword:    pkgconfig.GetEnvString("REDIS_PASSWORD", ""),
		RedisDB:          pkgconfig.GetEnvInt("REDIS_DB", 0),
		ThrottleInterval: pkgconfig.GetEnvDuration("THROTTLE_INTERVAL", 2*time.Second),
		DedupWindow:      pkgconfig.GetEnvDuration("DEDUP_WINDOW", 24*time.Hour),
		DedupMode:        strings.ToLower(pkgconfig.GetEnvString("DEDUP_MODE", DedupModeCache)),
		SuccessMessage:   pkgconfig.GetEnvString("SUCCESS_MESSAGE", "Your vote has been counted!"),
		FloodRPS:         float64(pkgconfig.GetEnvInt("FLOOD_RPS", 5)),
		FloodBurst:       pkgconfig.GetEnvInt("FLOOD_BURST", 10),
		CategoriesFile:   pkgconfig.GetEnvString("CATEGORIES_FILE", "config/categories.yaml"),
		RequestTimeout:   pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:  pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	if err := pkgconfig.ValidatePositiveDuration(c.ThrottleInterval); err != nil {
		return fmt.Errorf("THROTTLE_INTERVAL: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.DedupWindow); err != nil {
		return fmt.Errorf("DEDUP_WINDOW: %w", err)
	}
	if c.ThrottleInterval >= c.DedupWindow {
		return fmt.Errorf("THROTTLE_INTERVAL (%v) must be shorter than DEDUP_WINDOW (%v)",
			c.ThrottleInterval, c.DedupWindow)
	}
	if c.DedupMode != DedupModeCache && c.DedupMode != DedupModeMarker {
		return fmt.Errorf("DEDUP_MODE must be %q or %q, got %q",
			DedupModeCache, DedupModeMarker, c.DedupMode)
	}
	if c.FloodRPS <= 0 {
		return fmt.Errorf("FLOOD_RPS must be positive, got %v", c.FloodRPS)
	}
	if c.FloodBurst <= 0 {
		return fmt.Errorf("FLOOD_BURST must be positive, got %d", c.FloodBurst)
	}
	if err := pkgconfig.ValidateDurationRange(c.RequestTimeout, time.Second, 5*time.Minute); err != nil {
		return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	if c.CategoriesFile == "" {
		return fmt.Errorf("CATEGORIES_FILE must not be empty")
	}
	return nil
}

// MarkerDedup reports whether the ledger writer should use the
// compensating-marker strategy.
func (c Config) MarkerDedup() bool {
	return c.DedupMode == DedupModeMarker
}
