// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/inforepo/internal/app/resources"
	"github.com/dalemusser/inforepo/internal/app/system/timeouts"
	"github.com/dalemusser/inforepo/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after the backend
// client is built, but before the HTTP handler is built. It applies
// configured timeouts and the site name, loads shared templates, and starts
// the sequencer sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps BackendDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Fetch:  appCfg.TimeoutFetch,
		Mutate: appCfg.TimeoutMutate,
		Upload: appCfg.TimeoutUpload,
	})
	logger.Info("backend timeouts configured", zap.Any("timeouts", timeouts.Current()))

	viewdata.Init(appCfg.SiteName)
	resources.LoadSharedTemplates()

	if deps.Sweeper != nil {
		deps.Sweeper.Start()
	}
	return nil
}
