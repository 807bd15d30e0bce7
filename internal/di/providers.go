package di

import (
	"fmt"
	"time"

	domrepo "GasCurve/internal/domain/repository"
	"GasCurve/internal/handler/api"
	internalrepo "GasCurve/internal/repository"
	"GasCurve/internal/usecase"
	"GasCurve/pkg/cache"
	pkgch "GasCurve/pkg/clickhouse"
	"GasCurve/pkg/config"
	xhttp "GasCurve/pkg/http"
	applogger "GasCurve/pkg/logger"
	"GasCurve/pkg/metrics"
	"GasCurve/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// configured observation source does not need one.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Data.Source != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideObservationStore selects the observation store backend.
func ProvideObservationStore(cfg *config.Config, chClient *pkgch.Client, logger *applogger.Logger) (domrepo.ObservationStore, error) {
	switch cfg.Data.Source {
	case "csv":
		return internalrepo.NewCSVObservationStore(cfg.Data.CSVPath), nil
	case "clickhouse":
		store := internalrepo.NewCHObservationStore(chClient)
		store.SetLogger(logger)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// ProvideCache selects the cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideCurveService creates the curve use case.
func ProvideCurveService(
	store domrepo.ObservationStore,
	cacheSvc cache.Service,
	m domrepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.CurveService {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return usecase.NewCurveService(store, cacheSvc, m, logger, cfg.Data.Series, ttl)
}

// ProvideAPIHandler creates the HTTP handler.
func ProvideAPIHandler(logger *applogger.Logger, curve *usecase.CurveService) xhttp.Handler {
	return api.NewCurveEchoHandler(logger, curve)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	curve *usecase.CurveService,
	store domrepo.ObservationStore,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, logger, curve, store, cacheSvc, chClient, handler)
}
