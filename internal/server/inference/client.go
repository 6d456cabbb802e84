// Package inference forwards accepted uploads to the image analysis service
// and records its answers on the upload reports.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/netx"
)

// maxResponse caps the analysis response body.
const maxResponse = 1 << 20

// ErrBadResponse marks an analysis answer that cannot be used. Retrying does not help.
var ErrBadResponse = errors.New("bad analysis response")

// AdditionalInfo is the colour detail of an Analysis.
type AdditionalInfo struct {
	Brightness         float64 `json:"brightness"`
	BrightnessCategory string  `json:"brightness_category"`
	Saturation         string  `json:"saturation"`
}

// Analysis is the answer of POST /analyze_image.
type Analysis struct {
	ClassName      string         `json:"class_name"`
	Defects        string         `json:"defects"`
	Type           string         `json:"type"`
	Size           string         `json:"size"`
	Hue            string         `json:"hue"`
	Color          string         `json:"color"`
	AdditionalInfo AdditionalInfo `json:"additional_info"`
}

// Result carries the decoded analysis and the body it was decoded from.
type Result struct {
	Analysis Analysis
	Raw      json.RawMessage
}

// Client talks to the analysis service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL; timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Analyze posts one image as multipart part "file" and decodes the answer.
// Non-2xx answers come back as *netx.StatusError.
func (c *Client) Analyze(ctx context.Context, filename, contentType string, data []byte) (*Result, error) {
	req, err := netx.NewMultipartRequest(ctx, c.baseURL+"/analyze_image", netx.FilePart{
		Field:       "file",
		Filename:    filename,
		ContentType: contentType,
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer netx.DrainAndClose(resp.Body)

	if err := netx.CheckStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if a.ClassName == "" {
		return nil, fmt.Errorf("%w: class_name missing", ErrBadResponse)
	}

	return &Result{Analysis: a, Raw: json.RawMessage(body)}, nil
}
