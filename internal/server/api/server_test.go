package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	users map[string]fakeUser
}

type fakeUser struct {
	password string
	p        services.Principal
}

func (f *fakeAuth) Authenticate(_ context.Context, login string, password []byte) (*services.Principal, error) {
	u, ok := f.users[login]
	if !ok || u.password != string(password) {
		return nil, common.ErrorUnauthorized
	}
	p := u.p
	return &p, nil
}

type fakeIntake struct {
	mu        sync.Mutex
	uploads   []services.Upload
	uploaders []string
	uploadErr error

	reports    []models.Report
	reportsErr error
	lastLimit  int
}

func (f *fakeIntake) Upload(_ context.Context, user *services.Principal, up services.Upload) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, up)
	f.uploaders = append(f.uploaders, user.Login)
	return &models.Report{ID: int64(len(f.uploads)), Filename: up.Filename, Status: models.ReportPending}, nil
}

func (f *fakeIntake) Reports(_ context.Context, _ *services.Principal, limit int) ([]models.Report, error) {
	f.lastLimit = limit
	return f.reports, f.reportsErr
}

func newTestHandler(intake *fakeIntake) http.Handler {
	auth := &fakeAuth{users: map[string]fakeUser{
		"lead":    {password: "pw", p: services.Principal{ID: 1, Login: "lead", Role: models.RoleShiftLead}},
		"science": {password: "pw", p: services.Principal{ID: 2, Login: "science", Role: models.RoleDataScientist}},
		"guest":   {password: "pw", p: services.Principal{ID: 3, Login: "guest", Role: models.Role("guest")}},
	}}
	return NewHTTPServer("", logging.NewNopLogger(), auth, intake, 1<<20, time.Second).Handler()
}

func newTestServer(t *testing.T, intake *fakeIntake) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newTestHandler(intake))
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename == "" {
		require.NoError(t, mw.WriteField(field, string(data)))
	} else {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, req *http.Request) (int, http.Header, string) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, string(b)
}

func TestHealth_NoAuth(t *testing.T) {
	ts := newTestServer(t, &fakeIntake{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health/", nil)
	code, h, body := do(t, req)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)
	assert.Equal(t, "text/plain; charset=UTF-8", h.Get("Content-Type"))
}

func TestMetrics_Exposed(t *testing.T) {
	ts := newTestServer(t, &fakeIntake{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health/", nil)
	do(t, req)

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	code, _, body := do(t, req)

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "sc_http_requests_total")
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t, &fakeIntake{})

	tests := []struct {
		name     string
		method   string
		path     string
		login    string
		password string
		noAuth   bool
		wantCode int
		wantBody string
	}{
		{"check ok", http.MethodGet, "/check/", "lead", "pw", false, http.StatusOK, "Success"},
		{"check_credentials ok", http.MethodPost, "/check_credentials/", "science", "pw", false, http.StatusOK, "OK"},
		{"wrong password", http.MethodGet, "/check/", "lead", "nope", false, http.StatusUnauthorized, "Unauthorized"},
		{"unknown user", http.MethodGet, "/check/", "ghost", "pw", false, http.StatusUnauthorized, "Unauthorized"},
		{"no header", http.MethodGet, "/check/", "", "", true, http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.login, tt.password)
			}
			code, h, body := do(t, req)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Secure Area"`, h.Get("WWW-Authenticate"))
			}
		})
	}
}

func TestUploadImage_OK(t *testing.T) {
	intake := &fakeIntake{}
	ts := newTestServer(t, intake)

	body, ct := multipartBody(t, "file", "MyPhoto.JPG", "image/JPG", []byte("jpeg-bytes"))
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/images/", body)
	req.Header.Set("Content-Type", ct)
	req.SetBasicAuth("lead", "pw")

	code, _, resp := do(t, req)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Image received", resp)
	require.Len(t, intake.uploads, 1)
	assert.Equal(t, "MyPhoto.JPG", intake.uploads[0].Filename)
	assert.Equal(t, "image/JPG", intake.uploads[0].ContentType)
	assert.Equal(t, []byte("jpeg-bytes"), intake.uploads[0].Data)
	assert.Equal(t, []string{"lead"}, intake.uploaders)
}

func TestUploadImage_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		login     string
		build     func(t *testing.T) (io.Reader, string)
		uploadErr error
		wantCode  int
		wantBody  string
	}{
		{
			name:  "text field instead of file",
			login: "lead",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", "", "", []byte("not a file"))
			},
			wantCode: http.StatusBadRequest,
			wantBody: "Wrong format",
		},
		{
			name:  "wrong field name",
			login: "lead",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "image", "a.png", "image/png", []byte("x"))
			},
			wantCode: http.StatusBadRequest,
			wantBody: "Wrong format",
		},
		{
			name:  "not multipart",
			login: "lead",
			build: func(t *testing.T) (io.Reader, string) {
				return strings.NewReader("{}"), "application/json"
			},
			wantCode: http.StatusBadRequest,
			wantBody: "Wrong format",
		},
		{
			name:  "too large",
			login: "lead",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", "big.png", "image/png", bytes.Repeat([]byte("a"), 2<<20))
			},
			wantCode: http.StatusRequestEntityTooLarge,
			wantBody: "File too large",
		},
		{
			name:  "role without upload permission",
			login: "science",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", "a.png", "image/png", []byte("x"))
			},
			wantCode: http.StatusForbidden,
			wantBody: "Forbidden",
		},
		{
			name:  "service rejects format",
			login: "lead",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", "a.png", "image/png", []byte("x"))
			},
			uploadErr: fmt.Errorf("filename: %w", common.ErrorWrongFormat),
			wantCode:  http.StatusBadRequest,
			wantBody:  "Wrong format",
		},
		{
			name:  "storage failure",
			login: "lead",
			build: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "file", "a.png", "image/png", []byte("x"))
			},
			uploadErr: errors.New("s3 down"),
			wantCode:  http.StatusInternalServerError,
			wantBody:  "Internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intake := &fakeIntake{uploadErr: tt.uploadErr}
			h := newTestHandler(intake)

			body, ct := tt.build(t)
			req := httptest.NewRequest(http.MethodPost, "/images/", body)
			req.Header.Set("Content-Type", ct)
			req.SetBasicAuth(tt.login, "pw")
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Empty(t, intake.uploads)
		})
	}
}

func TestUploadImage_RequiresAuth(t *testing.T) {
	intake := &fakeIntake{}
	ts := newTestServer(t, intake)

	body, ct := multipartBody(t, "file", "a.png", "image/png", []byte("x"))
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/images/", body)
	req.Header.Set("Content-Type", ct)

	code, _, _ := do(t, req)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Empty(t, intake.uploads)
}

func TestListReports(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	intake := &fakeIntake{reports: []models.Report{
		{ID: 7, Filename: "a.png", Status: models.ReportDone, ModelResponse: json.RawMessage(`{"class_name":"wheat"}`), CreatedAt: created},
	}}
	ts := newTestServer(t, intake)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/reports/?limit=5", nil)
	req.SetBasicAuth("science", "pw")
	code, h, body := do(t, req)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, 5, intake.lastLimit)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a.png", got[0]["filename"])
	assert.Equal(t, map[string]any{"class_name": "wheat"}, got[0]["model_response"])
}

func TestListReports_EmptyAndErrors(t *testing.T) {
	t.Run("empty is an array", func(t *testing.T) {
		ts := newTestServer(t, &fakeIntake{})
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/reports/", nil)
		req.SetBasicAuth("lead", "pw")
		code, _, body := do(t, req)
		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, "[]", body)
	})

	t.Run("bad limit", func(t *testing.T) {
		ts := newTestServer(t, &fakeIntake{})
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/reports/?limit=x", nil)
		req.SetBasicAuth("lead", "pw")
		code, _, _ := do(t, req)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("role without report access", func(t *testing.T) {
		intake := &fakeIntake{}
		ts := newTestServer(t, intake)
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/reports/?limit=3", nil)
		req.SetBasicAuth("guest", "pw")
		code, _, body := do(t, req)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Forbidden", body)
		assert.Zero(t, intake.lastLimit)
	})

	t.Run("service forbids", func(t *testing.T) {
		ts := newTestServer(t, &fakeIntake{reportsErr: common.ErrorForbidden})
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/reports/", nil)
		req.SetBasicAuth("lead", "pw")
		code, _, _ := do(t, req)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("service error", func(t *testing.T) {
		ts := newTestServer(t, &fakeIntake{reportsErr: errors.New("db down")})
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/reports/", nil)
		req.SetBasicAuth("lead", "pw")
		code, _, _ := do(t, req)
		assert.Equal(t, http.StatusInternalServerError, code)
	})
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := NewHTTPServer("", logging.NewNopLogger(), &fakeAuth{}, &fakeIntake{}, 1<<20, time.Second)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewHTTPServer(ln.Addr().String(), logging.NewNopLogger(), &fakeAuth{}, &fakeIntake{}, 1<<20, time.Second)
	assert.Error(t, s.Run(context.Background()))
}
