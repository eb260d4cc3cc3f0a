package config

import "time"

// Config holds runtime settings for the store-lit CLI.
//
// Fields:
//   - ServerURL: base URL of the store-lit HTTP API.
//   - RequestTimeout: per-request deadline for API calls.
//   - SessionDir: directory (relative to the working directory) keeping the session cookie.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDir     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.SessionDir = ".store-lit"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
