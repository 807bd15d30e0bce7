package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasCurve/internal/domain/models"
	"GasCurve/internal/services/analytics"
	"GasCurve/pkg/cache"
)

type fakeStore struct {
	obs     []models.Observation
	stored  []models.Observation
	fetches int
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }

func (f *fakeStore) GetObservations(ctx context.Context, series string) ([]models.Observation, error) {
	f.fetches++
	return f.obs, nil
}

func (f *fakeStore) StoreBatch(ctx context.Context, series string, obs []models.Observation) error {
	f.stored = append(f.stored, obs...)
	return nil
}

func (f *fakeStore) Health(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                     { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordRebuild(string)               {}
func (noopMetrics) RecordEstimate(string)              {}
func (noopMetrics) RecordError(string)                 {}
func (noopMetrics) RecordLatency(string, float64)      {}
func (noopMetrics) RecordLastEstimate(string, float64) {}

func monthlyHistory(n int) []models.Observation {
	base := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		d := base.AddDate(0, i, 0)
		price := 11.0 + 0.02*float64(i) + 1.2*math.Cos(2*math.Pi*float64(d.Month()-1)/12)
		obs[i] = models.Observation{Date: d, Price: price}
	}
	return obs
}

func newTestService(store *fakeStore) *CurveService {
	return NewCurveService(store, cache.NewMemoryCache(), noopMetrics{}, nil, "henry_hub", time.Minute)
}

func TestEstimateBeforeRebuild(t *testing.T) {
	svc := newTestService(&fakeStore{obs: monthlyHistory(48)})

	_, err := svc.Estimate(context.Background(), time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, analytics.ErrModelNotBuilt)

	_, err = svc.Forecast(context.Background(), 12)
	assert.ErrorIs(t, err, analytics.ErrModelNotBuilt)

	_, err = svc.Summary(context.Background())
	assert.ErrorIs(t, err, analytics.ErrModelNotBuilt)

	_, err = svc.Seasonal(context.Background())
	assert.ErrorIs(t, err, analytics.ErrModelNotBuilt)

	_, err = svc.TrendCurve(context.Background(), 10)
	assert.ErrorIs(t, err, analytics.ErrModelNotBuilt)
}

func TestRebuildThenEstimate(t *testing.T) {
	store := &fakeStore{obs: monthlyHistory(48)}
	svc := newTestService(store)

	require.NoError(t, svc.Rebuild(context.Background()))

	point, err := svc.Estimate(context.Background(), time.Date(2023, time.June, 15, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(point.Price))
	assert.Equal(t, time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC), point.Date)
}

func TestRebuildUsesObservationCache(t *testing.T) {
	store := &fakeStore{obs: monthlyHistory(48)}
	svc := newTestService(store)

	require.NoError(t, svc.Rebuild(context.Background()))
	require.NoError(t, svc.Rebuild(context.Background()))

	assert.Equal(t, 1, store.fetches)
}

func TestForecastCountAndSpacing(t *testing.T) {
	svc := newTestService(&fakeStore{obs: monthlyHistory(48)})
	require.NoError(t, svc.Rebuild(context.Background()))

	points, err := svc.Forecast(context.Background(), 18)
	require.NoError(t, err)
	require.Len(t, points, 18)

	last := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range points {
		want := last.AddDate(0, i+1, 0)
		assert.Equal(t, want, p.Date)
	}
}

func TestSeasonalSortedByMonth(t *testing.T) {
	svc := newTestService(&fakeStore{obs: monthlyHistory(48)})
	require.NoError(t, svc.Rebuild(context.Background()))

	entries, err := svc.Seasonal(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 12)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, int(entries[i-1].Month), int(entries[i].Month))
	}
}

func TestTrendCurveEndpoints(t *testing.T) {
	svc := newTestService(&fakeStore{obs: monthlyHistory(48)})
	require.NoError(t, svc.Rebuild(context.Background()))

	points, err := svc.TrendCurve(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, points, 50)

	assert.Equal(t, time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), points[len(points)-1].Date)

	_, err = svc.TrendCurve(context.Background(), 1)
	assert.ErrorIs(t, err, analytics.ErrInvalidArgument)
}

func TestSummaryAfterRebuild(t *testing.T) {
	svc := newTestService(&fakeStore{obs: monthlyHistory(48)})
	require.NoError(t, svc.Rebuild(context.Background()))

	stats, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 48, stats.Observations)
	assert.Greater(t, stats.StdDev, 0.0)
	assert.Equal(t, time.January, stats.HighMonth)
	assert.Equal(t, time.July, stats.LowMonth)
}
