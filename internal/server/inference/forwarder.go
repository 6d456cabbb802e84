package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/netx"
	"github.com/dmitrijs2005/seedclassifier/internal/server/metrics"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/storage"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// Job is one report waiting for analysis. When Data is nil the image is
// read back from Location.
type Job struct {
	ReportID    int64
	Filename    string
	ContentType string
	Location    string
	Data        []byte
}

// Analyzer runs one analysis request.
type Analyzer interface {
	Analyze(ctx context.Context, filename, contentType string, data []byte) (*Result, error)
}

// ReportStore is the part of the reports repository the forwarder needs.
type ReportStore interface {
	SetResult(ctx context.Context, id int64, status models.ReportStatus, response json.RawMessage) error
	ListPending(ctx context.Context, limit int) ([]models.Report, error)
}

// ObjectLoader reads stored images back.
type ObjectLoader interface {
	Get(ctx context.Context, location string) (*storage.Object, error)
}

// Forwarder is a fixed pool of workers draining a bounded queue of jobs.
// Jobs still queued at shutdown keep their pending status and are picked
// up again by ResumePending on the next start.
type Forwarder struct {
	analyzer   Analyzer
	reports    ReportStore
	objects    ObjectLoader
	queue      chan Job
	workers    int
	newBackoff func() retry.Backoff
	logger     logging.Logger
}

type Option func(*Forwarder)

func WithWorkers(n int) Option {
	return func(f *Forwarder) {
		if n > 0 {
			f.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(f *Forwarder) {
		if n >= 0 {
			f.queue = make(chan Job, n)
		}
	}
}

// WithMaxAttempts sets a capped exponential backoff (1s doubling, at most
// 30s apart) with at most n attempts per job.
func WithMaxAttempts(n uint64) Option {
	return func(f *Forwarder) {
		if n == 0 {
			n = 1
		}
		f.newBackoff = func() retry.Backoff {
			return retry.WithMaxRetries(n-1, retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second)))
		}
	}
}

// WithBackoff overrides the per-job backoff factory.
func WithBackoff(b func() retry.Backoff) Option {
	return func(f *Forwarder) { f.newBackoff = b }
}

func WithLogger(l logging.Logger) Option {
	return func(f *Forwarder) { f.logger = l }
}

func NewForwarder(a Analyzer, reports ReportStore, objects ObjectLoader, opts ...Option) *Forwarder {
	f := &Forwarder{
		analyzer: a,
		reports:  reports,
		objects:  objects,
		queue:    make(chan Job, 100),
		workers:  4,
		logger:   logging.NewNopLogger(),
	}
	WithMaxAttempts(5)(f)
	for _, o := range opts {
		o(f)
	}
	f.logger = f.logger.With("module", "forwarder")
	return f
}

// Enqueue hands a job to the pool without blocking. It returns false when
// the queue is full; the report then stays pending.
func (f *Forwarder) Enqueue(job Job) bool {
	select {
	case f.queue <- job:
		return true
	default:
		metrics.Forwards.WithLabelValues("queue_full").Inc()
		return false
	}
}

// Run starts the workers and blocks until ctx is done and every worker has
// finished its current job.
func (f *Forwarder) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < f.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case job := <-f.queue:
					f.process(ctx, job)
				}
			}
		})
	}
	f.logger.Info(ctx, "forwarder started", "workers", f.workers, "queue", cap(f.queue))
	err := g.Wait()
	f.logger.Info(context.WithoutCancel(ctx), "forwarder stopped", "left_in_queue", len(f.queue))
	return err
}

// ResumePending enqueues reports left pending by an earlier run, up to the
// free queue capacity. It returns the number enqueued.
func (f *Forwarder) ResumePending(ctx context.Context) (int, error) {
	free := cap(f.queue) - len(f.queue)
	if free <= 0 {
		return 0, nil
	}
	pending, err := f.reports.ListPending(ctx, free)
	if err != nil {
		return 0, fmt.Errorf("list pending reports: %w", err)
	}

	n := 0
	for _, r := range pending {
		if !f.Enqueue(Job{ReportID: r.ID, Filename: r.Filename, ContentType: r.ContentType, Location: r.Location}) {
			break
		}
		n++
	}
	if n > 0 {
		f.logger.Info(ctx, "pending reports resumed", "count", n)
	}
	return n, nil
}

func (f *Forwarder) process(ctx context.Context, job Job) {
	log := f.logger.With("report_id", job.ReportID)

	if job.Data == nil {
		obj, err := f.objects.Get(ctx, job.Location)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error(ctx, "stored image unreadable", "location", job.Location, "error", err)
			f.finish(ctx, log, job, models.ReportFailed, nil)
			return
		}
		job.Data = obj.Data
		if job.ContentType == "" {
			job.ContentType = obj.ContentType
		}
	}

	var result *Result
	attempt := 0
	err := retry.Do(ctx, f.newBackoff(), func(ctx context.Context) error {
		attempt++
		r, err := f.analyzer.Analyze(ctx, job.Filename, job.ContentType, job.Data)
		if err != nil {
			log.Warn(ctx, "analysis attempt failed", "attempt", attempt, "error", err)
			if retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = r
		return nil
	})

	switch {
	case err == nil:
		log.Info(ctx, "analysis stored", "class_name", result.Analysis.ClassName, "attempts", attempt)
		f.finish(ctx, log, job, models.ReportDone, result.Raw)
	case ctx.Err() != nil:
		metrics.Forwards.WithLabelValues("interrupted").Inc()
		log.Info(context.WithoutCancel(ctx), "analysis interrupted, report stays pending")
	default:
		log.Error(ctx, "analysis failed", "attempts", attempt, "error", err)
		f.finish(ctx, log, job, models.ReportFailed, nil)
	}
}

func (f *Forwarder) finish(ctx context.Context, log logging.Logger, job Job, status models.ReportStatus, raw json.RawMessage) {
	if err := f.reports.SetResult(context.WithoutCancel(ctx), job.ReportID, status, raw); err != nil {
		log.Error(ctx, "report update failed", "status", status, "error", err)
		return
	}
	metrics.Forwards.WithLabelValues(string(status)).Inc()
}

// retryable treats transport errors, 429 and 5xx as transient.
func retryable(err error) bool {
	if errors.Is(err, ErrBadResponse) {
		return false
	}
	var se *netx.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
