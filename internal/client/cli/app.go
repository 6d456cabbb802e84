package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/seedclassifier/internal/client/client"
	"github.com/dmitrijs2005/seedclassifier/internal/client/config"
	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
	"github.com/dmitrijs2005/seedclassifier/internal/client/services"
	"github.com/dmitrijs2005/seedclassifier/internal/client/submit"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
)

// queueAPI is the subset of services.QueueService used by the commands.
type queueAPI interface {
	Add(ctx context.Context, sourceURI, displayName string) (*models.PendingUpload, error)
	List(ctx context.Context) ([]models.PendingUpload, error)
	Rename(ctx context.Context, id, displayName string) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Submit(ctx context.Context) (submit.Outcome, error)
	Reports(ctx context.Context) ([]models.Report, error)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	queue       queueAPI
	db          *sql.DB
	userName    string
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, 0)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(c.LogLevel),
	})))
	auth := services.NewAuthService(api, db)

	engine := submit.NewEngine(api, auth,
		submit.WithPolicy(submit.RetryPolicy{
			Delay:       c.RetryDelay,
			Exponential: c.RetryExponential,
			MaxDelay:    c.RetryMaxDelay,
			MaxAttempts: c.RetryMaxAttempts,
		}),
		submit.WithAttemptTimeout(c.AttemptTimeout),
		submit.WithObserver(newSpinner(os.Stdout)),
		submit.WithLogger(logger),
	)

	queue := services.NewQueueService(db, engine, auth, api, logger)

	a := &App{
		config:      c,
		authService: auth,
		queue:       queue,
		db:          db,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
	if u, err := auth.CurrentUser(ctx); err == nil {
		a.userName = u
	}
	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	log.Println("Welcome to the seed classifier CLI (type 'help' for commands)")
	a.checkServer(ctx)
	if a.userName == "" {
		_ = a.Login(ctx, nil)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// checkServer warns when the upload endpoint cannot be reached. Queue
// commands keep working offline, so this never aborts startup.
func (a *App) checkServer(ctx context.Context) bool {
	if err := a.authService.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "warning: server unreachable: %v\n", err)
		return false
	}
	return true
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(not logged in)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}
