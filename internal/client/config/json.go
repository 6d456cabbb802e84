package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/seedclassifier/internal/flagx"
	"github.com/dmitrijs2005/seedclassifier/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Pointer and timex.Duration fields let absent keys keep earlier values.
type JsonConfig struct {
	ServerURL        string         `json:"server_url"`
	DBPath           string         `json:"db_path"`
	RetryDelay       timex.Duration `json:"retry_delay"`
	RetryExponential *bool          `json:"retry_exponential"`
	RetryMaxDelay    timex.Duration `json:"retry_max_delay"`
	RetryMaxAttempts *uint64        `json:"retry_max_attempts"`
	AttemptTimeout   timex.Duration `json:"attempt_timeout"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by -c/-config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.RetryDelay.Set() {
		cfg.RetryDelay = jc.RetryDelay.Duration
	}
	if jc.RetryExponential != nil {
		cfg.RetryExponential = *jc.RetryExponential
	}
	if jc.RetryMaxDelay.Set() {
		cfg.RetryMaxDelay = jc.RetryMaxDelay.Duration
	}
	if jc.RetryMaxAttempts != nil {
		cfg.RetryMaxAttempts = *jc.RetryMaxAttempts
	}
	if jc.AttemptTimeout.Set() {
		cfg.AttemptTimeout = jc.AttemptTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
