// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background workers. The backend client holds no
// connections that need closing beyond the shared transport.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps BackendDeps, logger *zap.Logger) error {
	if deps.Sweeper != nil {
		logger.Info("stopping sequence sweeper")
		deps.Sweeper.Stop()
	}
	return nil
}
