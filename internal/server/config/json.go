package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/seedclassifier/internal/flagx"
	"github.com/dmitrijs2005/seedclassifier/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Durations use timex.Duration so both "30s" and integer nanoseconds parse.
// Keys absent from the file leave the earlier value in place.
type JsonConfig struct {
	HTTPAddr           string         `json:"http_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	StorageBackend     string         `json:"storage_backend"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	InferenceURL       string         `json:"inference_url"`
	InferenceTimeout   timex.Duration `json:"inference_timeout"`
	ForwardWorkers     *int           `json:"forward_workers"`
	ForwardQueueSize   *int           `json:"forward_queue_size"`
	ForwardMaxAttempts *uint64        `json:"forward_max_attempts"`
	MaxUploadSize      *int64         `json:"max_upload_size"`
	AuthCacheTTL       timex.Duration `json:"auth_cache_ttl"`
	AuthCacheSize      *int           `json:"auth_cache_size"`
	AdminLogin         string         `json:"admin_login"`
	AdminPassword      string         `json:"admin_password"`
	LogLevel           string         `json:"log_level"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag into config. Nothing is loaded when neither is given.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.InferenceURL, c.InferenceURL)
	setString(&config.AdminLogin, c.AdminLogin)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.LogLevel, c.LogLevel)

	if c.InferenceTimeout.Set() {
		config.InferenceTimeout = c.InferenceTimeout.Duration
	}
	if c.AuthCacheTTL.Set() {
		config.AuthCacheTTL = c.AuthCacheTTL.Duration
	}
	if c.ShutdownTimeout.Set() {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.ForwardWorkers != nil {
		config.ForwardWorkers = *c.ForwardWorkers
	}
	if c.ForwardQueueSize != nil {
		config.ForwardQueueSize = *c.ForwardQueueSize
	}
	if c.ForwardMaxAttempts != nil {
		config.ForwardMaxAttempts = *c.ForwardMaxAttempts
	}
	if c.MaxUploadSize != nil {
		config.MaxUploadSize = *c.MaxUploadSize
	}
	if c.AuthCacheSize != nil {
		config.AuthCacheSize = *c.AuthCacheSize
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
