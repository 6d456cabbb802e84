// Package submit delivers the pending-upload list to the upload endpoint.
//
// A run walks a private snapshot of the list in order, sending one item at a
// time and retrying the same item until it is accepted. Item N+1 is never
// attempted before item N succeeds. Cancelling the context ends the run at
// the next suspension point (an HTTP call or a retry delay).
package submit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
	"github.com/dmitrijs2005/seedclassifier/internal/filex"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/sethvargo/go-retry"
)

// Credentials is the basic-auth pair attached to every request of a run.
type Credentials struct {
	Login    string
	Password string
}

// CredentialProvider supplies credentials once per run.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// Part is everything one attempt sends.
type Part struct {
	Filename    string
	ContentType string
	Path        string
}

// Uploader performs a single HTTP attempt. Any error counts as a failure.
type Uploader interface {
	Upload(ctx context.Context, creds Credentials, part Part) error
}

// Observer is told when a run starts and ends.
type Observer interface {
	Started(total int)
	Finished(out Outcome, err error)
}

// Outcome reports what a run achieved, including partial progress.
type Outcome struct {
	Delivered []string
	Rejected  []ItemError
	Calls     int
}

type nopObserver struct{}

func (nopObserver) Started(int)             {}
func (nopObserver) Finished(Outcome, error) {}

// statSource checks that an item's bytes can be read. Replaced in tests.
var statSource = func(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

type Engine struct {
	uploader       Uploader
	creds          CredentialProvider
	newBackoff     func() retry.Backoff
	attemptTimeout time.Duration
	observer       Observer
	logger         logging.Logger
}

type Option func(*Engine)

func WithPolicy(p RetryPolicy) Option {
	return func(e *Engine) { e.newBackoff = p.Backoff }
}

// WithBackoff overrides the per-item backoff factory.
func WithBackoff(f func() retry.Backoff) Option {
	return func(e *Engine) { e.newBackoff = f }
}

// WithAttemptTimeout bounds every HTTP attempt. Zero means no bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) { e.attemptTimeout = d }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(u Uploader, c CredentialProvider, opts ...Option) *Engine {
	e := &Engine{
		uploader:   u,
		creds:      c,
		newBackoff: DefaultPolicy().Backoff,
		observer:   nopObserver{},
		logger:     logging.NewNopLogger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run submits items in order. It returns nil only when every well-formed
// item was delivered; malformed items are listed in Outcome.Rejected.
func (e *Engine) Run(ctx context.Context, items []models.PendingUpload) (out Outcome, err error) {
	snapshot := slices.Clone(items)

	e.observer.Started(len(snapshot))
	defer func() { e.observer.Finished(out, err) }()

	if len(snapshot) == 0 {
		return out, nil
	}

	creds, err := e.creds.Credentials(ctx)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	if creds.Login == "" {
		return out, ErrNoCredentials
	}

	log := e.logger.With("run_items", len(snapshot))
	log.Info(ctx, "submission started")

	for _, item := range snapshot {
		part, perr := buildPart(item)
		if perr != nil {
			log.Warn(ctx, "item rejected", "id", item.ID, "error", perr)
			out.Rejected = append(out.Rejected, ItemError{ID: item.ID, Err: perr})
			continue
		}

		if err := e.deliver(ctx, creds, item, part, &out); err != nil {
			log.Warn(ctx, "submission stopped", "id", item.ID, "delivered", len(out.Delivered), "error", err)
			return out, err
		}
		out.Delivered = append(out.Delivered, item.ID)
	}

	log.Info(ctx, "submission finished", "delivered", len(out.Delivered), "rejected", len(out.Rejected), "calls", out.Calls)
	return out, nil
}

func (e *Engine) deliver(ctx context.Context, creds Credentials, item models.PendingUpload, part Part, out *Outcome) error {
	attempt := 0
	err := retry.Do(ctx, e.newBackoff(), func(ctx context.Context) error {
		attempt++
		out.Calls++

		actx, cancel := e.attemptContext(ctx)
		defer cancel()

		if err := e.uploader.Upload(actx, creds, part); err != nil {
			e.logger.Warn(ctx, "upload attempt failed", "id", item.ID, "file", part.Filename, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		e.logger.Debug(ctx, "upload accepted", "id", item.ID, "file", part.Filename, "attempt", attempt)
		return nil
	})

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
	default:
		return fmt.Errorf("%w: %s after %d attempts: %w", ErrRetriesExhausted, item.ID, attempt, err)
	}
}

func (e *Engine) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.attemptTimeout > 0 {
		return context.WithTimeout(ctx, e.attemptTimeout)
	}
	return context.WithCancel(ctx)
}

func buildPart(item models.PendingUpload) (Part, error) {
	name, err := FileName(item.DisplayName, item.SourceURI)
	if err != nil {
		return Part{}, err
	}
	ct, err := ContentType(item.Kind, item.SourceURI)
	if err != nil {
		return Part{}, err
	}
	path, err := filex.LocalPath(item.SourceURI)
	if err != nil {
		return Part{}, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	if err := statSource(path); err != nil {
		return Part{}, fmt.Errorf("%w: unreadable source: %v", ErrMalformedItem, err)
	}
	return Part{Filename: name, ContentType: ct, Path: path}, nil
}

// IsCanceled reports whether err ended a run because of cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}
