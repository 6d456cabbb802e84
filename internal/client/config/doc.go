// Package config loads runtime configuration for the seed classifier CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the upload endpoint
//	-d string   path of the local SQLite store
//	-r int      delay between attempts for the same item (seconds)
//	-t int      timeout of a single upload attempt (seconds, 0 = none)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "db_path": "seedclassifier.db",
//	  "retry_delay": "15s",
//	  "retry_exponential": false,
//	  "retry_max_delay": "5m",
//	  "retry_max_attempts": 0,
//	  "attempt_timeout": "60s",
//	  "log_level": "warn"
//	}
package config
