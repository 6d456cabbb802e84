package api

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/server/metrics"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type ctxKey string

const principalKey ctxKey = "principal"

// realm is the Basic challenge sent with every 401.
const realm = `Basic realm="Secure Area"`

func principalFrom(ctx context.Context) *services.Principal {
	p, _ := ctx.Value(principalKey).(*services.Principal)
	return p
}

// basicAuth rejects requests without valid credentials with 401 and a Basic challenge.
func (s *HTTPServer) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		p, err := s.users.Authenticate(r.Context(), login, []byte(password))
		if err != nil {
			s.logger.Debug(r.Context(), "authentication failed", "login", login, "path", r.URL.Path)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", realm)
	writeText(w, http.StatusUnauthorized, "Unauthorized")
}

// requirePermission lets a request through when the caller's role grants
// any of perms.
func (s *HTTPServer) requirePermission(perms ...models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := principalFrom(r.Context())
			if user == nil || !slices.ContainsFunc(perms, user.Role.Can) {
				writeText(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusWriter captures the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// routePattern keeps metric label cardinality bounded.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		path := routePattern(r)
		metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// requestLogger logs every request; the level follows the status class.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.written,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		}
		switch {
		case sw.status >= 500:
			s.logger.Error(r.Context(), "http request", args...)
		case sw.status >= 400:
			s.logger.Warn(r.Context(), "http request", args...)
		default:
			s.logger.Info(r.Context(), "http request", args...)
		}
	})
}
