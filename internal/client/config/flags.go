package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered with flagx.FilterArgs so REPL arguments and the
// JSON config flag do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-r", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the upload endpoint")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local store")
	retryDelay := fs.Int("r", int(cfg.RetryDelay.Seconds()), "retry delay (in seconds)")
	attemptTimeout := fs.Int("t", int(cfg.AttemptTimeout.Seconds()), "upload attempt timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given on the command line replace earlier layers.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.RetryDelay = time.Duration(*retryDelay) * time.Second
		case "t":
			cfg.AttemptTimeout = time.Duration(*attemptTimeout) * time.Second
		}
	})
}
