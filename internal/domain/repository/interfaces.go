package repository

import (
	"context"

	"GasCurve/internal/domain/models"
)

// ObservationStore provides access to cleaned historical price observations.
type ObservationStore interface {
	Init(ctx context.Context) error // ensure schema, health checks
	GetObservations(ctx context.Context, series string) ([]models.Observation, error)
	StoreBatch(ctx context.Context, series string, obs []models.Observation) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics abstracts the operational counters recorded by the serving layer.
type Metrics interface {
	RecordRebuild(series string)
	RecordEstimate(kind string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordLastEstimate(series string, price float64)
}
