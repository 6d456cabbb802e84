package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-s string   storage backend, "db" or "s3"
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i string   inference service base URL
//	-T int      inference request timeout, seconds
//	-w int      forwarding workers
//	-m int      max upload size, megabytes
//	-l string   log level
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flag.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-i", "-w", "-m", "-l", "-T"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend (db or s3)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.InferenceURL, "i", config.InferenceURL, "inference service URL")
	fs.IntVar(&config.ForwardWorkers, "w", config.ForwardWorkers, "forwarding workers")
	maxUpload := fs.Int64("m", config.MaxUploadSize>>20, "max upload size (in megabytes)")
	inferenceTimeout := fs.Int("T", int(config.InferenceTimeout.Seconds()), "inference request timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			config.MaxUploadSize = *maxUpload << 20
		case "T":
			config.InferenceTimeout = time.Duration(*inferenceTimeout) * time.Second
		}
	})
}
