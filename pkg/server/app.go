package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "GasCurve/internal/domain/repository"
	"GasCurve/internal/scheduler"
	"GasCurve/internal/usecase"
	"GasCurve/pkg/cache"
	pkgch "GasCurve/pkg/clickhouse"
	"GasCurve/pkg/config"
	xhttp "GasCurve/pkg/http"
	applogger "GasCurve/pkg/logger"
)

// App encapsulates the application lifecycle: model warmup, the HTTP serving
// surface, and the periodic rebuild scheduler.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	curve      *usecase.CurveService
	store      domrepo.ObservationStore
	cache      cache.Service
	chClient   *pkgch.Client
	handler    xhttp.Handler
	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	curve *usecase.CurveService,
	store domrepo.ObservationStore,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		curve:    curve,
		store:    store,
		cache:    cacheSvc,
		chClient: chClient,
		handler:  handler,
	}
}

// Ingest loads a CSV history file into the observation store and returns the
// number of rows stored. Used for one-shot data loading.
func (a *App) Ingest(ctx context.Context, path string) (int, error) {
	if err := a.store.Init(ctx); err != nil {
		return 0, err
	}
	defer func() {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("store close error", applogger.Error(err))
		}
	}()
	return a.curve.IngestCSV(ctx, path)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.store.Init(ctx); err != nil {
		return err
	}

	// Warm up the model from stored history. A failure here is not fatal:
	// the API answers 409 until the first successful rebuild.
	if err := a.curve.Rebuild(ctx); err != nil {
		a.logger.Warn("initial model build failed, serving without model",
			applogger.String("series", a.curve.Series()),
			applogger.Error(err),
		)
	}

	if a.cfg.Data.RebuildCron != "" {
		a.sched = scheduler.New(ctx, a.curve, a.logger)
		if err := a.sched.Register(a.cfg.Data.RebuildCron); err != nil {
			return err
		}
		a.sched.Start()
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.logger),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.sched != nil {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
