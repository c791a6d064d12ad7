// Package scheduler drives the daily risk recalculation on an interval.
package scheduler

import (
	"context"
	"time"

	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/riskrecalc"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	Job   *riskrecalc.Job
}

// Scheduler ticks on a fixed interval and fires the recalculation job
// whenever the configured period has elapsed since the last run.
type Scheduler struct {
	log     *zap.Logger
	cfg     config.SchedulerConfig
	clock   clock.Clock
	job     *riskrecalc.Job
	lastRun time.Time
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:   p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:   p.Cfg.Scheduler,
		clock: p.Clock,
		job:   p.Job,
	}
}

// RunForever loops until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Error("scheduled recalculation failed", zap.Error(err))
			}
		}
	}
}

// RunOnce runs the recalculation job if it is due.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.clock.Now()
	if !s.due(now) {
		return nil
	}

	s.log.Info("starting risk recalculation run", zap.Time("run_at", now))
	report, err := s.job.RecalculateAll(ctx)
	if err != nil {
		return err
	}
	s.lastRun = now

	s.log.Info("risk recalculation run complete",
		zap.Int("users_processed", report.Summary.UsersProcessed),
		zap.Int("debtors_processed", report.Summary.TotalDebtorsProcessed),
		zap.Int("errors", report.Summary.TotalErrors),
	)
	return nil
}

func (s *Scheduler) due(now time.Time) bool {
	every := s.cfg.RecalcEvery
	if every <= 0 {
		every = 24 * time.Hour
	}
	if s.lastRun.IsZero() {
		return true
	}
	return now.Sub(s.lastRun) >= every
}
