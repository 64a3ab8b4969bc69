package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/harsha446-acm/ai-interview-platform/internal/engine"
	"github.com/harsha446-acm/ai-interview-platform/internal/metrics"
	"github.com/harsha446-acm/ai-interview-platform/internal/models"
	"github.com/harsha446-acm/ai-interview-platform/internal/repositories"
)

// ExpiryWatchdog periodically sweeps in-progress attempts whose clock
// ran out while the candidate was idle and finalizes them. Attempts
// where the candidate is still submitting are expired inline by the
// engine; the watchdog only catches abandoned ones.
type ExpiryWatchdog struct {
	engine   *engine.Engine
	repo     repositories.AttemptRepository
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewExpiryWatchdog(eng *engine.Engine, repo repositories.AttemptRepository, schedule string, logger *zap.Logger) *ExpiryWatchdog {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &ExpiryWatchdog{
		engine:   eng,
		repo:     repo,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the sweep.
func (w *ExpiryWatchdog) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := w.Sweep(ctx); err != nil {
			w.logger.Error("expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}
	w.cron.Start()
	w.logger.Info("expiry watchdog started", zap.String("schedule", w.schedule))
	return nil
}

func (w *ExpiryWatchdog) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}

// Sweep finalizes every in-progress attempt whose time has expired.
func (w *ExpiryWatchdog) Sweep(ctx context.Context) error {
	attempts, err := w.repo.ListInProgress(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range attempts {
		a := &attempts[i]
		if !engine.TimeStatusAt(a, now).IsExpired {
			continue
		}
		if _, err := w.engine.End(ctx, a.ID, models.ReasonTimeExpired); err != nil {
			// A concurrent submit may have finalized it already; the
			// next sweep skips it either way.
			w.logger.Warn("failed to expire attempt",
				zap.String("attempt_id", a.ID), zap.Error(err))
			continue
		}
		metrics.AttemptEnded(models.ReasonTimeExpired)
		w.logger.Info("attempt expired by watchdog", zap.String("attempt_id", a.ID))
	}
	return nil
}
