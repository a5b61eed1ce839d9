// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Config holds the process settings. The zero-environment defaults bind
// 0.0.0.0:8000 with rate limiting off.
type Config struct {
	Host            string
	Port            int
	RedisAddr       string
	RateLimit       int
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8000,
		RateLimit:       60,
		RateWindow:      time.Minute,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads the SCRITE_* variables from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("SCRITE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := getenv("SCRITE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return Config{}, fmt.Errorf("config: SCRITE_PORT %q is not a valid port", v)
		}
		cfg.Port = port
	}
	cfg.RedisAddr = getenv("SCRITE_REDIS_ADDR")
	if v := getenv("SCRITE_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return Config{}, fmt.Errorf("config: SCRITE_RATE_LIMIT %q must be a non-negative integer", v)
		}
		cfg.RateLimit = limit
	}

	var err error
	if cfg.RateWindow, err = duration(getenv, "SCRITE_RATE_WINDOW", cfg.RateWindow); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = duration(getenv, "SCRITE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, d)
	}
	return d, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RateLimitEnabled reports whether a Redis address was configured.
func (c Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}
