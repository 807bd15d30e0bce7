package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"GasCurve/internal/domain/models"
	domrepo "GasCurve/internal/domain/repository"
	"GasCurve/internal/repository"
	"GasCurve/internal/services/analytics"
	"GasCurve/pkg/cache"
	applogger "GasCurve/pkg/logger"
	"GasCurve/pkg/util"
)

// CurveService owns the estimation model for one price series. Queries are
// served from an immutable model snapshot; Rebuild fits a fresh model from
// the observation store and swaps it in atomically.
type CurveService struct {
	store    domrepo.ObservationStore
	cache    cache.Service
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	series   string
	cacheTTL time.Duration

	model atomic.Pointer[analytics.Model]
}

func NewCurveService(
	store domrepo.ObservationStore,
	cacheSvc cache.Service,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	series string,
	cacheTTL time.Duration,
) *CurveService {
	return &CurveService{
		store:    store,
		cache:    cacheSvc,
		metrics:  metrics,
		logger:   logger,
		series:   series,
		cacheTTL: cacheTTL,
	}
}

// Series returns the price series this service models.
func (s *CurveService) Series() string { return s.series }

// Rebuild fetches the observation history and fits a new model. The current
// model keeps serving until the new one is ready.
func (s *CurveService) Rebuild(ctx context.Context) error {
	start := time.Now()

	obs, err := s.loadObservations(ctx)
	if err != nil {
		s.metrics.RecordError("load_observations")
		return fmt.Errorf("load observations: %w", err)
	}

	model, err := analytics.BuildModel(obs)
	if err != nil {
		s.metrics.RecordError("build_model")
		return fmt.Errorf("build model: %w", err)
	}

	s.model.Store(model)
	s.metrics.RecordRebuild(s.series)
	s.metrics.RecordLatency("rebuild", time.Since(start).Seconds())

	if s.logger != nil {
		s.logger.Info("model rebuilt",
			applogger.String("series", s.series),
			applogger.Int("observations", len(obs)),
			applogger.Time("first", model.Base()),
			applogger.Time("last", model.LastObserved()),
		)
	}
	return nil
}

func (s *CurveService) loadObservations(ctx context.Context) ([]models.Observation, error) {
	key := cache.Key("observations", s.series)

	if s.cache != nil {
		var cached []models.Observation
		if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	obs, err := s.store.GetObservations(ctx, s.series)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(obs) > 0 {
		if err := s.cache.Set(ctx, key, obs, s.cacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache set failed", applogger.Error(err))
		}
	}
	return obs, nil
}

// Estimate returns the modeled price for an arbitrary date.
func (s *CurveService) Estimate(ctx context.Context, date time.Time) (models.PricePoint, error) {
	model := s.model.Load()

	price, err := model.EstimatePrice(date)
	if err != nil {
		s.metrics.RecordError("estimate")
		return models.PricePoint{}, err
	}

	s.metrics.RecordEstimate("point")
	s.metrics.RecordLastEstimate(s.series, price)
	return models.PricePoint{Date: util.DayStart(date), Price: price}, nil
}

// Forecast extrapolates the model one month at a time past the last
// observation and collects the points.
func (s *CurveService) Forecast(ctx context.Context, months int) ([]models.PricePoint, error) {
	model := s.model.Load()

	seq, err := model.Extrapolate(months)
	if err != nil {
		s.metrics.RecordError("forecast")
		return nil, err
	}

	points := make([]models.PricePoint, 0, months)
	for date, price := range seq {
		points = append(points, models.PricePoint{Date: date, Price: price})
	}

	s.metrics.RecordEstimate("forecast")
	return points, nil
}

// Summary computes descriptive statistics over the fitted history.
func (s *CurveService) Summary(ctx context.Context) (analytics.SummaryStatistics, error) {
	model := s.model.Load()

	stats, err := model.Summary()
	if err != nil {
		s.metrics.RecordError("summary")
		return analytics.SummaryStatistics{}, err
	}

	s.metrics.RecordEstimate("summary")
	return stats, nil
}

// Seasonal returns the monthly adjustment table in calendar order. Months
// absent from the history are omitted.
func (s *CurveService) Seasonal(ctx context.Context) ([]models.SeasonalEntry, error) {
	model := s.model.Load()
	if model == nil {
		s.metrics.RecordError("seasonal")
		return nil, analytics.ErrModelNotBuilt
	}

	table := model.Seasonal()
	entries := make([]models.SeasonalEntry, 0, len(table))
	for m := time.January; m <= time.December; m++ {
		if adj, ok := table[m]; ok {
			entries = append(entries, models.SeasonalEntry{Month: m, Adjustment: adj})
		}
	}

	s.metrics.RecordEstimate("seasonal")
	return entries, nil
}

// TrendCurve samples the fitted polynomial trend at evenly spaced points
// across the observed date range. Seasonal adjustments are excluded.
func (s *CurveService) TrendCurve(ctx context.Context, points int) ([]models.PricePoint, error) {
	model := s.model.Load()
	if model == nil {
		s.metrics.RecordError("trend")
		return nil, analytics.ErrModelNotBuilt
	}
	if points < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points", analytics.ErrInvalidArgument)
	}

	trend := model.Trend()
	base := model.Base()
	span := util.DaysBetween(base, model.LastObserved())

	out := make([]models.PricePoint, 0, points)
	for i := 0; i < points; i++ {
		x := span * float64(i) / float64(points-1)
		date := base.Add(time.Duration(x * 24 * float64(time.Hour)))
		out = append(out, models.PricePoint{Date: date, Price: trend.At(x)})
	}

	s.metrics.RecordEstimate("trend")
	return out, nil
}

// IngestCSV loads a CSV history file into the observation store and drops the
// cached observation set so the next rebuild sees the new data.
func (s *CurveService) IngestCSV(ctx context.Context, path string) (int, error) {
	obs, err := repository.LoadCSVFile(path)
	if err != nil {
		s.metrics.RecordError("ingest")
		return 0, fmt.Errorf("load csv: %w", err)
	}

	if err := s.store.StoreBatch(ctx, s.series, obs); err != nil {
		s.metrics.RecordError("ingest")
		return 0, fmt.Errorf("store batch: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.Key("observations", s.series))
	}

	if s.logger != nil {
		s.logger.Info("csv ingested",
			applogger.String("series", s.series),
			applogger.String("path", path),
			applogger.Int("rows", len(obs)),
		)
	}
	return len(obs), nil
}
