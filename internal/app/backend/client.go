// Package backend is the client for the resource backend's REST API.
//
// The backend owns all state. This package only shapes requests, checks
// status codes, and validates listing responses at the boundary:
//
//	GET    /api/resources?query=<q>   -> JSON array of resources
//	POST   /api/upload                (multipart: file?, url?, notes, tags)
//	PUT    /api/resources/{id}        (multipart: notes, tags)
//	DELETE /api/resources/{id}
//
// Response bodies of the mutating calls are ignored.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/inforepo/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	listPath   = "/api/resources"
	uploadPath = "/api/upload"

	// maxListingBytes caps how much of a listing body is read.
	maxListingBytes = 16 << 20
)

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *Metrics
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records per-call metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client for baseURL (scheme and host, optional path prefix).
// A trailing slash is ignored.
func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadRequest describes a new resource. At most one of File and URL is
// expected to be meaningful; both are forwarded when set.
type UploadRequest struct {
	File     io.Reader // nil when no file was chosen
	FileName string
	URL      string
	Notes    string
	Tags     string // comma-separated, split by the backend
}

// List fetches resources matching query. An empty query lists everything.
func (c *Client) List(ctx context.Context, query string) ([]models.Resource, error) {
	path := listPath + "?query=" + url.QueryEscape(query)
	body, err := c.do(ctx, "list", http.MethodGet, path, nil, "", true)
	if err != nil {
		return nil, err
	}
	return decodeListing(body, c.log)
}

// Ping checks that the listing endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "ping", http.MethodGet, listPath+"?query=", nil, "", false)
	return err
}

// Upload creates a resource. The file field is sent only when req.File is
// set; the url field only when req.URL is non-empty.
func (c *Client) Upload(ctx context.Context, req UploadRequest) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if req.File != nil {
		name := req.FileName
		if name == "" {
			name = "upload"
		}
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, req.File); err != nil {
			return fmt.Errorf("copy file part: %w", err)
		}
	}
	if req.URL != "" {
		if err := mw.WriteField("url", req.URL); err != nil {
			return fmt.Errorf("write url field: %w", err)
		}
	}
	if err := mw.WriteField("notes", req.Notes); err != nil {
		return fmt.Errorf("write notes field: %w", err)
	}
	if err := mw.WriteField("tags", req.Tags); err != nil {
		return fmt.Errorf("write tags field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	_, err := c.do(ctx, "upload", http.MethodPost, uploadPath, &buf, mw.FormDataContentType(), false)
	return err
}

// Update overwrites notes and tags of resource id.
func (c *Client) Update(ctx context.Context, id, notes, tags string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("notes", notes); err != nil {
		return fmt.Errorf("write notes field: %w", err)
	}
	if err := mw.WriteField("tags", tags); err != nil {
		return fmt.Errorf("write tags field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	_, err := c.do(ctx, "update", http.MethodPut, resourcePath(id), &buf, mw.FormDataContentType(), false)
	return err
}

// Delete removes resource id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, resourcePath(id), nil, "", false)
	return err
}

func resourcePath(id string) string {
	return listPath + "/" + url.PathEscape(id)
}

// do performs one request. When wantBody is false the response body is
// drained and discarded.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, wantBody bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if wantBody {
		req.Header.Set("Accept", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(op, "error", elapsed.Seconds())
		c.log.Debug("backend request failed",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
		zap.String("request_id", reqID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.observe(op, "status", elapsed.Seconds())
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if !wantBody {
		c.metrics.observe(op, "ok", elapsed.Seconds())
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		c.metrics.observe(op, "error", elapsed.Seconds())
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	c.metrics.observe(op, "ok", elapsed.Seconds())
	return b, nil
}
