package bootstrap

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"github.com/dalemusser/inforepo/internal/app/system/viewdata"
	"github.com/dalemusser/inforepo/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		BackendURL:         "https://backend.example.com",
		SiteName:           "Info Repository",
		DisplayTimezone:    "UTC",
		MaxUploadMB:        32,
		MutationsPerMinute: 120,
		SessionName:        "inforepo-session",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"placeholder backend accepted", func(c *AppConfig) { c.BackendURL = defaultBackendURL }, ""},
		{"relative backend", func(c *AppConfig) { c.BackendURL = "/api" }, "backend_url"},
		{"ftp backend", func(c *AppConfig) { c.BackendURL = "ftp://example.com" }, "backend_url"},
		{"unknown zone", func(c *AppConfig) { c.DisplayTimezone = "Mars/Olympus" }, "display_timezone"},
		{"zero upload", func(c *AppConfig) { c.MaxUploadMB = 0 }, "max_upload_mb"},
		{"negative rate limit", func(c *AppConfig) { c.MutationsPerMinute = -1 }, "mutations_per_minute"},
		{"empty session name", func(c *AppConfig) { c.SessionName = "" }, "session_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAppConfig_MaxUploadBytes(t *testing.T) {
	cfg := AppConfig{MaxUploadMB: 2}
	if got := cfg.MaxUploadBytes(); got != 2<<20 {
		t.Errorf("MaxUploadBytes: got %d, want %d", got, 2<<20)
	}
}

func TestConnectDB_UnreachableBackendDoesNotFail(t *testing.T) {
	cfg := validAppConfig()
	cfg.BackendURL = "http://127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deps, err := ConnectDB(ctx, &config.CoreConfig{}, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Client == nil || deps.Registry == nil || deps.Sequencer == nil || deps.Sweeper == nil || deps.Limiter == nil {
		t.Fatalf("incomplete deps: %+v", deps)
	}
}

func TestConnectDB_RateLimitDisabled(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	cfg := validAppConfig()
	cfg.BackendURL = fb.URL
	cfg.MutationsPerMinute = 0

	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Limiter != nil {
		t.Error("expected no limiter when mutations_per_minute is 0")
	}
}

func TestConnectDB_PingsBackend(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	cfg := validAppConfig()
	cfg.BackendURL = fb.URL

	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Client.BaseURL() != fb.URL {
		t.Errorf("BaseURL: got %q, want %q", deps.Client.BaseURL(), fb.URL)
	}
	calls := fb.Calls()
	if len(calls) != 1 || calls[0] != http.MethodGet+" /api/resources" {
		t.Errorf("expected one ping GET, got %v", calls)
	}
}

func TestEnsureSchema_ProbesListing(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.ListBody = `[{"id":"1","title":"t"},{"title":"no id"}]`
	cfg := validAppConfig()
	cfg.BackendURL = fb.URL

	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if err := EnsureSchema(context.Background(), &config.CoreConfig{}, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if n := len(fb.Calls()); n != 2 {
		t.Errorf("expected ping and probe, got %d calls", n)
	}
}

func TestStartupAndShutdown(t *testing.T) {
	defer timeouts.Reset()

	fb := testutil.NewFakeBackend(t)
	cfg := validAppConfig()
	cfg.BackendURL = fb.URL
	cfg.SiteName = "My Repo"
	cfg.TimeoutFetch = 3 * time.Second

	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if err := Startup(context.Background(), &config.CoreConfig{}, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if timeouts.Fetch() != 3*time.Second {
		t.Errorf("Fetch timeout: got %v", timeouts.Fetch())
	}
	if timeouts.Mutate() <= 0 {
		t.Error("zero Mutate timeout should keep the default")
	}
	if viewdata.SiteName() != "My Repo" {
		t.Errorf("SiteName: got %q", viewdata.SiteName())
	}

	if err := Shutdown(context.Background(), &config.CoreConfig{}, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	// A second stop must not panic.
	deps.Sweeper.Stop()
}
