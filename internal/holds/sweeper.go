package holds

import (
	"context"
	"log/slog"
	"time"

	"festivaltickets/pkg/logger"
)

// Sweeper periodically drops expired holds so that a store which is only
// read lazily does not grow without bound.
type Sweeper struct {
	store    Store
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger
	onSweep  func(removed int)
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweeper creates a sweeper for store running every interval.
// onSweep, when non-nil, receives the number of removed entries after each run.
func NewSweeper(store Store, interval time.Duration, log *logger.Logger, onSweep func(removed int)) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		log:      log.WithComponent("hold_sweeper"),
		onSweep:  onSweep,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("Hold sweeper started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Hold sweeper stopped (context cancelled)")
			return
		case <-s.stopCh:
			s.log.Info("Hold sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for it.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.Sweep(ctx, s.now())
	if err != nil {
		s.log.Error("Hold sweep failed", slog.Any("error", err))
		return
	}

	if s.onSweep != nil {
		s.onSweep(removed)
	}
	if removed > 0 {
		s.log.Info("Expired holds removed", slog.Int("count", removed))
	} else {
		s.log.Debug("No expired holds")
	}
}
