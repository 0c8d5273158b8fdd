// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/inforepo/internal/app/features/errors"
	healthfeature "github.com/dalemusser/inforepo/internal/app/features/health"
	libraryfeature "github.com/dalemusser/inforepo/internal/app/features/library"
	"github.com/dalemusser/inforepo/internal/app/system/clientsession"
	"github.com/dalemusser/inforepo/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, backend setup, and the Startup
// hook have completed. It boots the template engine, applies the client
// session middleware, and mounts the health, metrics, static, and library
// routes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps BackendDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := clientsession.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	loc, err := time.LoadLocation(appCfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("load display time zone: %w", err)
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// Unknown paths and methods render the friendly error page.
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Client, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint (backend call counters, Go runtime)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Resource browser/editor. Every page needs a client id, so the session
	// middleware wraps only these routes.
	libHandler := libraryfeature.NewHandler(deps.Client, sessionMgr, deps.Sequencer, errLog, logger, libraryfeature.Options{
		Location:       loc,
		MaxUploadBytes: appCfg.MaxUploadBytes(),
	})
	var mutating []func(http.Handler) http.Handler
	if deps.Limiter != nil {
		mutating = append(mutating, ratelimit.Middleware(deps.Limiter, logger))
	}
	libRouter := libraryfeature.Routes(libHandler, mutating...)
	libRouter.NotFound(errHandler.NotFound)
	libRouter.MethodNotAllowed(errHandler.MethodNotAllowed)
	r.With(sessionMgr.Load).Mount("/", libRouter)

	return r, nil
}
