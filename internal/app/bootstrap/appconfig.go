// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging, and CORS. AppConfig covers the resource backend, the browser
// session cookie, and display settings.
type AppConfig struct {
	// Resource backend
	BackendURL string // Base URL of the resource REST API (scheme://host[/prefix])

	// Display
	SiteName        string // Shown in the page header and title
	DisplayTimezone string // IANA zone used to render created_at dates

	// Upload and mutation limits
	MaxUploadMB        int // Largest accepted upload request, in MiB
	MutationsPerMinute int // Uploads/edits/deletes allowed per client per minute (0 disables)

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (blank: random per boot)
	SessionName   string // Cookie name for sessions (default: inforepo-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Backend call timeouts (zero keeps the built-in default)
	TimeoutFetch  time.Duration
	TimeoutMutate time.Duration
	TimeoutUpload time.Duration
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
