// internal/app/bootstrap/deps.go
package bootstrap

import (
	"github.com/dalemusser/inforepo/internal/app/backend"
	"github.com/dalemusser/inforepo/internal/app/system/ratelimit"
	"github.com/dalemusser/inforepo/internal/app/system/sequence"
	"github.com/prometheus/client_golang/prometheus"
)

// BackendDeps holds the backend client and the process-wide state built
// around it. It is created once in ConnectDB and shared by every request.
type BackendDeps struct {
	Client   *backend.Client
	Registry *prometheus.Registry

	// Per-client list fetch ordering and mutation rate limiting. Limiter is
	// nil when rate limiting is disabled.
	Sequencer *sequence.Sequencer
	Limiter   *ratelimit.Limiter

	// Sweeper forgets idle clients in both of the above.
	Sweeper *sequence.Sweeper
}
