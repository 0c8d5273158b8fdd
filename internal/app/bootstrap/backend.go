// internal/app/bootstrap/backend.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/inforepo/internal/app/backend"
	"github.com/dalemusser/inforepo/internal/app/system/ratelimit"
	"github.com/dalemusser/inforepo/internal/app/system/sequence"
	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	// sequenceIdle is how long a browser client's fetch counter is kept
	// after its last list request.
	sequenceIdle = 30 * time.Minute
	// sweepInterval is how often idle clients and expired rate windows
	// are forgotten.
	sweepInterval = 5 * time.Minute
)

// ConnectDB builds the backend client, its metrics registry, the list
// sequencer, and the mutation rate limiter. The backend is pinged once; an unreachable backend is logged
// but does not abort startup, since the UI reports fetch failures itself.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (BackendDeps, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := backend.NewMetrics(reg)
	if err != nil {
		return BackendDeps{}, fmt.Errorf("register backend metrics: %w", err)
	}

	client := backend.New(appCfg.BackendURL, logger, backend.WithMetrics(metrics))

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("resource backend not reachable at startup",
			zap.String("backend_url", client.BaseURL()),
			zap.Error(err))
	} else {
		logger.Info("resource backend reachable", zap.String("backend_url", client.BaseURL()))
	}

	deps := BackendDeps{
		Client:    client,
		Registry:  reg,
		Sequencer: sequence.New(sequenceIdle),
	}
	targets := []sequence.Sweepable{deps.Sequencer}
	if appCfg.MutationsPerMinute > 0 {
		deps.Limiter = ratelimit.New(appCfg.MutationsPerMinute, time.Minute)
		targets = append(targets, deps.Limiter)
	}
	deps.Sweeper = sequence.NewSweeper(logger, sweepInterval, targets...)
	return deps, nil
}

// EnsureSchema probes the listing endpoint so that a backend whose
// responses do not match the expected shape is reported at boot. Items
// that fail validation are dropped and logged by the client.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps BackendDeps, logger *zap.Logger) error {
	if deps.Client == nil {
		return nil
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeouts.Fetch())
	defer cancel()

	items, err := deps.Client.List(probeCtx, "")
	if err != nil {
		logger.Warn("resource listing probe failed", zap.Error(err))
		return nil
	}
	logger.Info("resource listing probe ok", zap.Int("resources", len(items)))
	return nil
}
