package worker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/models"
)

// Runner is the engine entry point the sweeper calls on each tick.
type Runner interface {
	ScheduleAndAssign(ctx context.Context, limit int) (models.CombinedReport, error)
}

type SweeperConfig struct {
	Interval   time.Duration
	BatchLimit int
}

// Sweeper periodically schedules new jobs and fills open installer slots.
type Sweeper struct {
	cfg    SweeperConfig
	runner Runner
	logger zerolog.Logger
}

func NewSweeper(cfg SweeperConfig, runner Runner, logger zerolog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Sweeper{
		cfg:    cfg,
		runner: runner,
		logger: logger.With().Str("component", "sweeper").Logger(),
	}
}

// Start blocks until ctx is cancelled. A failed sweep is logged and the
// next tick runs as usual.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.cfg.Interval).Msg("sweeper started")
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	report, err := s.runner.ScheduleAndAssign(ctx, s.cfg.BatchLimit)
	if err != nil {
		return errors.Wrap(err, "schedule and assign")
	}
	s.logger.Info().
		Int("scheduled", len(report.Scheduling.Scheduled)).
		Int("assigned", report.Assignment.SuccessfulAssignments).
		Int("unfilled", report.Assignment.FailedAssignments).
		Msg("sweep complete")
	return nil
}
