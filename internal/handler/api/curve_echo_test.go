package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GasCurve/internal/domain/models"
	"GasCurve/internal/usecase"
	"GasCurve/pkg/cache"
)

type stubStore struct {
	obs []models.Observation
}

func (s *stubStore) Init(ctx context.Context) error { return nil }

func (s *stubStore) GetObservations(ctx context.Context, series string) ([]models.Observation, error) {
	return s.obs, nil
}

func (s *stubStore) StoreBatch(ctx context.Context, series string, obs []models.Observation) error {
	return nil
}

func (s *stubStore) Health(ctx context.Context) error { return nil }
func (s *stubStore) Close() error                     { return nil }

type stubMetrics struct{}

func (stubMetrics) RecordRebuild(string)               {}
func (stubMetrics) RecordEstimate(string)              {}
func (stubMetrics) RecordError(string)                 {}
func (stubMetrics) RecordLatency(string, float64)      {}
func (stubMetrics) RecordLastEstimate(string, float64) {}

func history(n int) []models.Observation {
	base := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, n)
	for i := 0; i < n; i++ {
		d := base.AddDate(0, i, 0)
		obs[i] = models.Observation{
			Date:  d,
			Price: 10.5 + 0.015*float64(i) + 1.1*math.Cos(2*math.Pi*float64(d.Month()-1)/12),
		}
	}
	return obs
}

func newTestHandler(t *testing.T, rebuilt bool) (*CurveEchoHandler, *echo.Echo) {
	t.Helper()
	svc := usecase.NewCurveService(
		&stubStore{obs: history(48)}, cache.NewMemoryCache(), stubMetrics{}, nil, "henry_hub", time.Minute)
	if rebuilt {
		require.NoError(t, svc.Rebuild(context.Background()))
	}
	h := NewCurveEchoHandler(nil, svc)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestEstimateEndpoint(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/estimate?date=2023-06-15")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var point models.PricePoint
	require.NoError(t, json.Unmarshal(env.Data, &point))
	assert.False(t, math.IsNaN(point.Price))
}

func TestEstimateMissingDate(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/estimate")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestEstimateMalformedDate(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/estimate?date=June+2023")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestEstimateBeforeRebuildConflicts(t *testing.T) {
	_, e := newTestHandler(t, false)

	rec := doRequest(e, http.MethodGet, "/api/estimate?date=2023-06-15")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusConflict, env.Status)
}

func TestForecastEndpoint(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/forecast?months=6")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var points []models.PricePoint
	require.NoError(t, json.Unmarshal(env.Data, &points))
	assert.Len(t, points, 6)
}

func TestForecastDefaultsToTwelveMonths(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/forecast")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var points []models.PricePoint
	require.NoError(t, json.Unmarshal(env.Data, &points))
	assert.Len(t, points, 12)
}

func TestForecastRejectsBadHorizon(t *testing.T) {
	_, e := newTestHandler(t, true)

	for _, target := range []string{"/api/forecast?months=0", "/api/forecast?months=-3", "/api/forecast?months=999"} {
		rec := doRequest(e, http.MethodGet, target)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusBadRequest, env.Status, target)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/summary")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var stats struct {
		Mean         float64 `json:"mean"`
		Observations int     `json:"observations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 48, stats.Observations)
	assert.Greater(t, stats.Mean, 0.0)
}

func TestSeasonalEndpoint(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/seasonal")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var entries []models.SeasonalEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 12)
}

func TestTrendEndpoint(t *testing.T) {
	_, e := newTestHandler(t, true)

	rec := doRequest(e, http.MethodGet, "/api/trend?points=10")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var points []models.PricePoint
	require.NoError(t, json.Unmarshal(env.Data, &points))
	assert.Len(t, points, 10)
}

func TestRebuildEndpoint(t *testing.T) {
	_, e := newTestHandler(t, false)

	rec := doRequest(e, http.MethodPost, "/api/rebuild")
	env := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	rec = doRequest(e, http.MethodGet, "/api/estimate?date=2023-06-15")
	env = decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusOK, env.Status)
}
