// Package api exposes the upload endpoint over HTTP.
//
// Routes:
//
//	GET  /health/             liveness, no auth
//	GET  /metrics             Prometheus, no auth
//	GET  /check/              basic auth
//	POST /check_credentials/  basic auth
//	POST /images/             basic auth + upload:images, multipart part "file"
//	GET  /reports/            basic auth + read:reports (all reports) or
//	                          upload:images (own reports)
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authenticator verifies basic-auth credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, login string, password []byte) (*services.Principal, error)
}

// ImageIntake stores uploads and lists reports.
type ImageIntake interface {
	Upload(ctx context.Context, user *services.Principal, up services.Upload) (*models.Report, error)
	Reports(ctx context.Context, user *services.Principal, limit int) ([]models.Report, error)
}

type HTTPServer struct {
	address         string
	users           Authenticator
	images          ImageIntake
	logger          logging.Logger
	maxUploadSize   int64
	shutdownTimeout time.Duration
}

func NewHTTPServer(address string, l logging.Logger, users Authenticator, images ImageIntake, maxUploadSize int64, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         address,
		users:           users,
		images:          images,
		logger:          l.With("module", "http_server"),
		maxUploadSize:   maxUploadSize,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metricsMiddleware)
	r.Use(s.requestLogger)

	r.Get("/health/", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.basicAuth)

		r.Get("/check/", s.check)
		r.Post("/check_credentials/", s.checkCredentials)
		r.With(s.requirePermission(models.PermUploadImages)).Post("/images/", s.uploadImage)
		r.With(s.requirePermission(models.PermReadReports, models.PermUploadImages)).Get("/reports/", s.listReports)
	})

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan struct{})
	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			shutdownErr <- nil
			return
		}
		s.logger.Info(context.WithoutCancel(ctx), "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	err := srv.Serve(listen)
	close(stopped)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		<-shutdownErr
		return err
	}
	return <-shutdownErr
}
