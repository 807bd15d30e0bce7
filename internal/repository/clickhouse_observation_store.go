package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"GasCurve/internal/domain/models"
	domrepo "GasCurve/internal/domain/repository"
	pkgch "GasCurve/pkg/clickhouse"
	applogger "GasCurve/pkg/logger"
	"GasCurve/pkg/util"
)

const observationsTable = "gascurve.monthly_prices"

var observationsSchema = []string{
	"CREATE DATABASE IF NOT EXISTS gascurve",
	`CREATE TABLE IF NOT EXISTS ` + observationsTable + ` (
        series String,
        day    Date,
        price  Float64
    ) ENGINE = ReplacingMergeTree ORDER BY (series, day)`,
}

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHObservationStore(ch *pkgch.Client) *CHObservationStore {
	return &CHObservationStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHObservationStore) Init(ctx context.Context) error {
	for _, stmt := range observationsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init observations schema: %w", err)
		}
	}
	return nil
}

func (s *CHObservationStore) GetObservations(ctx context.Context, series string) ([]models.Observation, error) {
	start := time.Now()
	const q = `
        SELECT day, price
        FROM ` + observationsTable + `
        WHERE series = ?
        ORDER BY day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, series)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_observations query error",
				applogger.String("series", series),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get observations: %w", err)
	}
	defer rows.Close()

	out := make([]models.Observation, 0, 64)
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Date, &o.Price); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_observations scan error",
					applogger.String("series", series),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Date = util.DayStart(o.Date)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_observations ok",
			applogger.String("series", series),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationStore) StoreBatch(ctx context.Context, series string, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+observationsTable+" (series, day, price) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, series, util.DayStart(o.Date), o.Price); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert observation %s: %w", o.Date.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse store_batch ok",
			applogger.String("series", series),
			applogger.Int("rows", len(obs)),
		)
	}
	return nil
}

func (s *CHObservationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHObservationStore) Close() error {
	return s.db.Close()
}

var _ domrepo.ObservationStore = (*CHObservationStore)(nil)
