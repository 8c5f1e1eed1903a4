// Package config reads the site configuration from environment variables,
// falling back to local-development defaults.
package config

import (
	"fmt"
	"os"
	"time"
)

// Log environments accepted in LOG_ENV.
const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"
)

// Config holds every setting the site needs at startup.
type Config struct {
	Port            string
	BackendURL      string
	PublicURL       string
	LogEnv          string
	NotificationTTL time.Duration
	VisitIdleTTL    time.Duration
	// BackendTimeout of zero means requests to the backend are never cut short.
	BackendTimeout time.Duration
}

// Load reads the configuration from well-known environment variables.
func Load() (Config, error) {
	cfg := Config{
		Port:       getEnv("PORT", "8080"),
		BackendURL: getEnv("BACKEND_URL", "http://localhost:8001"),
		PublicURL:  getEnv("PUBLIC_URL", "http://localhost:8080"),
		LogEnv:     getEnv("LOG_ENV", EnvLocal),
	}

	var err error
	if cfg.NotificationTTL, err = getDuration("NOTIFICATION_TTL", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.VisitIdleTTL, err = getDuration("VISIT_IDLE_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 0); err != nil {
		return Config{}, err
	}

	switch cfg.LogEnv {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return Config{}, fmt.Errorf("LOG_ENV: unknown environment %q", cfg.LogEnv)
	}
	if cfg.NotificationTTL <= 0 {
		return Config{}, fmt.Errorf("NOTIFICATION_TTL must be positive, got %s", cfg.NotificationTTL)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
