// Package netx contains HTTP helpers shared by the upload client and the
// inference forwarder.
package netx

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// FilePart is a single multipart file part.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %s", e.Status)
	}
	return fmt.Sprintf("unexpected status: %s; body: %s", e.Status, e.Body)
}

// NewMultipartRequest builds a POST with exactly one file part.
// Unlike multipart.Writer.CreateFormFile it keeps the given part Content-Type.
// The body is streamed: part.Body is read only while the request is sent,
// and a read failure surfaces from the request body.
func NewMultipartRequest(ctx context.Context, url string, part FilePart) (*http.Request, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(part.Field), escapeQuotes(part.Filename)))
	ct := part.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	go func() {
		pw.CloseWithError(writePart(mw, h, part.Body))
	}()
	return req, nil
}

func writePart(mw *multipart.Writer, h textproto.MIMEHeader, body io.Reader) error {
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("read part body: %w", err)
	}
	return mw.Close()
}

// CheckStatus returns a *StatusError for any non-2xx response.
// The body is drained (up to a limit) but not closed.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code:   resp.StatusCode,
		Status: resp.Status,
		Body:   strings.TrimSpace(string(b)),
	}
}

// DrainAndClose lets the transport reuse the connection.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
