// Package backend builds the HTTP client used to reach the L'envers REST API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lenvers-aubagne/lenvers-web/internal/model"
)

// Probe settings for the startup health check.
const (
	probeAttempts = 5
	probeInterval = 2 * time.Second
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests without a deadline.
	Timeout time.Duration
}

// Client is a base URL bound to an *http.Client.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client for cfg. The base URL is stored without a trailing slash.
func New(cfg Config) *Client {
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTP: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	return c.BaseURL + path
}

// Connect builds a Client and probes GET /api/health, retrying a few times to
// accommodate a backend that is still starting. An unreachable backend is
// reported through the logger only: the site can still serve its static pages.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) *Client {
	c := New(cfg)

	var err error
	for attempt := 1; attempt <= probeAttempts; attempt++ {
		if err = c.Ping(ctx); err == nil {
			log.Info().Str("url", c.BaseURL).Msg("backend reachable")
			return c
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("of", probeAttempts).Msg("backend probe failed")
		if attempt == probeAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return c
		case <-time.After(probeInterval):
		}
	}

	log.Error().Err(err).Str("url", c.BaseURL).Msg("backend unreachable, continuing without it")
	return c
}

// Ping checks that the backend answers GET /api/health with status "healthy".
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/api/health"), nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health request: unexpected status %d", resp.StatusCode)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	if status.Status != "healthy" {
		return fmt.Errorf("backend reports status %q", status.Status)
	}
	return nil
}
