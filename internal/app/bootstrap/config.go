// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/inforepo/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// defaultBackendURL is the placeholder used when no backend is configured.
// It fails fast at the first request rather than at boot.
const defaultBackendURL = "https://your-railway-backend-url"

// appConfigKeys defines the configuration keys for inforepo.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, session_name, etc.
//   - Environment variables: INFOREPO_BACKEND_URL, INFOREPO_SESSION_NAME, etc.
//   - Command-line flags: --backend_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "backend_url", Default: defaultBackendURL, Desc: "Base URL of the resource backend API"},
	{Name: "site_name", Default: models.DefaultSiteName, Desc: "Site name shown in the header"},
	{Name: "display_timezone", Default: "UTC", Desc: "IANA time zone for displayed dates (e.g., America/Chicago)"},
	{Name: "max_upload_mb", Default: 32, Desc: "Maximum upload size in MiB"},
	{Name: "mutations_per_minute", Default: 120, Desc: "Uploads, edits, and deletes allowed per client per minute (0 disables)"},

	{Name: "session_key", Default: "", Desc: "Session signing key (blank generates a random key per boot)"},
	{Name: "session_name", Default: "inforepo-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Backend call timeouts
	{Name: "timeout_fetch", Default: "10s", Desc: "Timeout for listing resources (e.g., 10s)"},
	{Name: "timeout_mutate", Default: "10s", Desc: "Timeout for edits and deletes"},
	{Name: "timeout_upload", Default: "2m", Desc: "Timeout for uploads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, INFOREPO_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "INFOREPO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BackendURL:      appValues.String("backend_url"),
		SiteName:        appValues.String("site_name"),
		DisplayTimezone: appValues.String("display_timezone"),
		MaxUploadMB:     appValues.Int("max_upload_mb"),

		MutationsPerMinute: appValues.Int("mutations_per_minute"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		TimeoutFetch:  appValues.Duration("timeout_fetch", 10*time.Second),
		TimeoutMutate: appValues.Duration("timeout_mutate", 10*time.Second),
		TimeoutUpload: appValues.Duration("timeout_upload", 2*time.Minute),
	}

	if appCfg.BackendURL == defaultBackendURL {
		logger.Warn("backend_url not set; using placeholder",
			zap.String("backend_url", appCfg.BackendURL))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if !urlutil.IsValidAbsHTTPURL(appCfg.BackendURL) {
		logger.Error("invalid backend URL", zap.String("backend_url", appCfg.BackendURL))
		return fmt.Errorf("invalid backend_url %q: must be an absolute http(s) URL", appCfg.BackendURL)
	}

	if _, err := time.LoadLocation(appCfg.DisplayTimezone); err != nil {
		logger.Error("invalid display time zone", zap.String("display_timezone", appCfg.DisplayTimezone), zap.Error(err))
		return fmt.Errorf("invalid display_timezone %q: %w", appCfg.DisplayTimezone, err)
	}

	if appCfg.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", appCfg.MaxUploadMB)
	}

	if appCfg.MutationsPerMinute < 0 {
		return fmt.Errorf("mutations_per_minute must not be negative, got %d", appCfg.MutationsPerMinute)
	}

	if appCfg.SessionName == "" {
		return fmt.Errorf("session_name must not be empty")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == "" {
		logger.Warn("session_key is blank in prod; sessions will reset on every restart")
	}

	return nil
}
