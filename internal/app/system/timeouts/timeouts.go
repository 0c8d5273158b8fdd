// Package timeouts provides centralized timeout values for calls to the
// resource backend.
//
// Handlers wrap every backend call in context.WithTimeout using one of
// these values. Configure is called once from bootstrap with values from
// app config; zero values keep the defaults.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks
//   - Fetch: listing/search requests
//   - Mutate: update and delete requests
//   - Upload: multipart uploads, which may carry large files
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultFetch  = 10 * time.Second
	DefaultMutate = 10 * time.Second
	DefaultUpload = 2 * time.Minute
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	fetch  = DefaultFetch
	mutate = DefaultMutate
	upload = DefaultUpload
)

// Ping returns the timeout for backend health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Fetch returns the timeout for list/search requests.
func Fetch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return fetch
}

// Mutate returns the timeout for update and delete requests.
func Mutate() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return mutate
}

// Upload returns the timeout for multipart uploads.
func Upload() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upload
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Fetch  time.Duration
	Mutate time.Duration
	Upload time.Duration
}

// Configure sets custom timeout values. Call during startup before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Fetch > 0 {
		fetch = cfg.Fetch
	}
	if cfg.Mutate > 0 {
		mutate = cfg.Mutate
	}
	if cfg.Upload > 0 {
		upload = cfg.Upload
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	fetch = DefaultFetch
	mutate = DefaultMutate
	upload = DefaultUpload
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:   ping,
		Fetch:  fetch,
		Mutate: mutate,
		Upload: upload,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "upload resource")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
