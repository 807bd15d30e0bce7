package scheduler

import (
	"context"
	"fmt"
	"time"

	"GasCurve/internal/usecase"
	applogger "GasCurve/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler refits the estimation model on a cron schedule so new
// observations flow into the served curve without a restart.
type Scheduler struct {
	cron   *cron.Cron
	curve  *usecase.CurveService
	logger *applogger.Logger
	ctx    context.Context
}

func New(ctx context.Context, curve *usecase.CurveService, logger *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		curve:  curve,
		logger: logger,
		ctx:    ctx,
	}
}

// Register adds the periodic rebuild task. Takes a standard five-field cron
// expression, e.g. "30 2 1 * *" for 02:30 on the first of each month.
func (s *Scheduler) Register(rebuildCron string) error {
	if _, err := s.cron.AddFunc(rebuildCron, s.rebuildTask); err != nil {
		return fmt.Errorf("register rebuild task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("scheduler started")
	}
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("scheduler stopped")
	}
}

func (s *Scheduler) rebuildTask() {
	start := time.Now()
	if err := s.curve.Rebuild(s.ctx); err != nil {
		if s.logger != nil {
			s.logger.Error("scheduled rebuild failed",
				applogger.String("series", s.curve.Series()),
				applogger.Error(err),
			)
		}
		return
	}
	if s.logger != nil {
		s.logger.Info("scheduled rebuild done",
			applogger.String("series", s.curve.Series()),
			applogger.Duration("took", time.Since(start)),
		)
	}
}
