package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
	"github.com/dmitrijs2005/seedclassifier/internal/client/submit"
	"github.com/dmitrijs2005/seedclassifier/internal/filex"
	"github.com/dmitrijs2005/seedclassifier/internal/netx"
)

const (
	healthPath  = "/health/"
	checkPath   = "/check/"
	uploadPath  = "/images/"
	reportsPath = "/reports/"

	// uploadField is the only multipart part the endpoint reads.
	uploadField = "file"
)

// HTTPClient is safe for concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient validates baseURL. timeout bounds every request; per-call
// deadlines come from the context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Check verifies credentials against the server.
func (c *HTTPClient) Check(ctx context.Context, creds submit.Credentials) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+checkPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", submit.BasicAuth(creds.Login, creds.Password))
	return c.do(req, nil)
}

// Upload sends one part. It is a single attempt; retrying is the caller's job.
func (c *HTTPClient) Upload(ctx context.Context, creds submit.Credentials, part submit.Part) error {
	f, err := filex.Open(part.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", part.Path, err)
	}
	defer f.Close()

	req, err := netx.NewMultipartRequest(ctx, c.baseURL+uploadPath, netx.FilePart{
		Field:       uploadField,
		Filename:    part.Filename,
		ContentType: part.ContentType,
		Body:        f,
	})
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", submit.BasicAuth(creds.Login, creds.Password))
	return c.do(req, nil)
}

// Reports lists the caller's latest reports, newest first.
func (c *HTTPClient) Reports(ctx context.Context, creds submit.Credentials) ([]models.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+reportsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", submit.BasicAuth(creds.Login, creds.Password))
	req.Header.Set("Accept", "application/json")

	var out []models.Report
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends req and maps the outcome to package errors. A non-nil dst gets
// the JSON body of a 2xx response.
func (c *HTTPClient) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer netx.DrainAndClose(resp.Body)

	if err := netx.CheckStatus(resp); err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
