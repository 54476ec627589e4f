// Package worker runs the expiry sweep: a periodic pass over pending bookings
// whose will-expire deadline has passed, surfacing them in the operational log
// so staff can chase a translator or call the customer back.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nordtolk/booking/internal/domain"
)

// Source lists bookings whose expiry deadline passed.
type Source interface {
	SweepExpired(ctx context.Context, now time.Time) ([]domain.Job, error)
}

// Worker polls for expired pending bookings.
type Worker struct {
	src      Source
	interval time.Duration
	clock    domain.Clock
	logger   *zap.Logger

	reported map[int64]struct{}
}

// New creates a new worker.
func New(src Source, interval time.Duration, clock domain.Clock, logger *zap.Logger) *Worker {
	return &Worker{
		src:      src,
		interval: interval,
		clock:    clock,
		logger:   logger,
		reported: make(map[int64]struct{}),
	}
}

// Run starts the sweep loop until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("expiry sweeper started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry sweeper shutting down")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep reports each expired booking once; a booking that leaves the expired
// set (accepted late, withdrawn) is forgotten so a later expiry reports again.
func (w *Worker) sweep(ctx context.Context) int {
	jobs, err := w.src.SweepExpired(ctx, w.clock.Now())
	if err != nil {
		w.logger.Error("expiry sweep failed", zap.Error(err))
		return 0
	}

	current := make(map[int64]struct{}, len(jobs))
	fresh := 0
	for i := range jobs {
		job := &jobs[i]
		current[job.ID] = struct{}{}
		if _, seen := w.reported[job.ID]; seen {
			continue
		}
		w.reported[job.ID] = struct{}{}
		fresh++
		w.logger.Warn("booking expired unanswered",
			zap.Int64("job_id", job.ID),
			zap.Int64("customer_id", job.CustomerID),
			zap.Time("due", job.Due),
			zap.Time("will_expire_at", job.WillExpireAt))
	}
	for id := range w.reported {
		if _, ok := current[id]; !ok {
			delete(w.reported, id)
		}
	}
	return fresh
}
