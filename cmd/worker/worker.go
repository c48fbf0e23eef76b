package main

import (
	"context"
	"time"

	appctx "venueledger/internal/core/context"
	"venueledger/pkg/logger"
)

// DailyGenerator produces due DAILY reports.
type DailyGenerator interface {
	GenerateDueDaily(ctx context.Context, now time.Time) (int, error)
}

// KeyCleaner expires idempotency keys.
type KeyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Worker runs the scheduled jobs on a fixed interval, once at start-up and
// then on every tick. Runs never overlap.
type Worker struct {
	reports  DailyGenerator
	keys     KeyCleaner
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
	onTick   func(ctx context.Context)
}

// NewWorker creates a new worker.
func NewWorker(reports DailyGenerator, keys KeyCleaner, log *logger.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Worker{
		reports:  reports,
		keys:     keys,
		log:      log.WithComponent("worker"),
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext(appctx.OriginWorker))
	log := w.log.WithContext(ctx)

	generated, err := w.reports.GenerateDueDaily(ctx, w.now())
	if err != nil {
		log.Errorw("daily report run failed", "error", err)
	} else if generated > 0 {
		log.Infow("daily reports generated", "count", generated)
	}

	if w.keys != nil {
		removed, err := w.keys.CleanupExpired(ctx)
		if err != nil {
			log.Warnw("idempotency cleanup failed", "error", err)
		} else if removed > 0 {
			log.Infow("cleaned up idempotency keys", "count", removed)
		}
	}

	if w.onTick != nil {
		w.onTick(ctx)
	}
}
