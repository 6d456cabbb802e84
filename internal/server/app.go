// Package server wires the upload endpoint together: storage, the inference
// forwarder and the HTTP API, and runs them until a termination signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/api"
	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/inference"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seedclassifier/internal/server/services"
	"github.com/dmitrijs2005/seedclassifier/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	forwarder *inference.Forwarder
	server    *api.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c, logger)
	if c.AdminLogin != "" {
		if _, err := us.EnsureAdmin(ctx, c.AdminLogin, []byte(c.AdminPassword)); err != nil {
			return nil, fmt.Errorf("admin bootstrap error: %w", err)
		}
	}

	store, err := storage.New(ctx, c, db, rm)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	fwd := inference.NewForwarder(
		inference.NewClient(c.InferenceURL, c.InferenceTimeout),
		rm.Reports(db),
		store,
		inference.WithWorkers(c.ForwardWorkers),
		inference.WithQueueSize(c.ForwardQueueSize),
		inference.WithMaxAttempts(c.ForwardMaxAttempts),
		inference.WithLogger(logger),
	)

	is := services.NewImageService(db, rm, store, fwd, logger)
	srv := api.NewHTTPServer(c.HTTPAddr, logger, us, is, c.MaxUploadSize, c.ShutdownTimeout)

	return &App{config: c, logger: logger, db: db, forwarder: fwd, server: srv}, nil
}

// Run blocks until SIGINT/SIGTERM or a component failure.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	return app.run(ctx)
}

func (app *App) run(ctx context.Context) error {
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.WithoutCancel(ctx), "db close error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend, "inference", app.config.InferenceURL)

	// Re-enqueue before serving so a fresh upload is never queued twice.
	if _, err := app.forwarder.ResumePending(ctx); err != nil {
		app.logger.Warn(ctx, "resume pending reports failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.forwarder.Run(gctx)
	})

	g.Go(func() error {
		return app.server.Run(gctx)
	})

	err := g.Wait()
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}
