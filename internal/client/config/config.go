package config

import "time"

// Config holds runtime settings for the seed classifier CLI.
//
// Units: all intervals are time.Duration.
type Config struct {
	ServerURL string
	DBPath    string

	RetryDelay       time.Duration
	RetryExponential bool
	RetryMaxDelay    time.Duration
	// RetryMaxAttempts bounds attempts per item; 0 retries until delivered.
	RetryMaxAttempts uint64
	AttemptTimeout   time.Duration

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.DBPath = "seedclassifier.db"
	c.RetryDelay = 15 * time.Second
	c.RetryExponential = false
	c.RetryMaxDelay = 0
	c.RetryMaxAttempts = 0
	c.AttemptTimeout = 60 * time.Second
	c.LogLevel = "warn"
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
