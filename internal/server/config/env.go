package config

import (
	"os"
	"strconv"

	"github.com/dmitrijs2005/seedclassifier/internal/flagx"
)

// parseEnv overlays Config with deployment environment variables.
//
//	DATABASE_DSN     PostgreSQL DSN
//	FASTAPI_URL      inference service base URL
//	STORAGE_BACKEND  "db" or "s3"
//	S3_BUCKET        S3 bucket name
//	ADMIN_LOGIN      first admin login
//	ADMIN_PASSWORD   first admin password
//	FORWARD_WORKERS  forwarding workers
//
// Malformed numeric values panic, like the other layers.
func parseEnv(config *Config) {
	flagx.EnvString(&config.DatabaseDSN, "DATABASE_DSN")
	flagx.EnvString(&config.InferenceURL, "FASTAPI_URL")
	flagx.EnvString(&config.StorageBackend, "STORAGE_BACKEND")
	flagx.EnvString(&config.S3Bucket, "S3_BUCKET")
	flagx.EnvString(&config.AdminLogin, "ADMIN_LOGIN")
	flagx.EnvString(&config.AdminPassword, "ADMIN_PASSWORD")

	if v := os.Getenv("FORWARD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.ForwardWorkers = n
	}
}
