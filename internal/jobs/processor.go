package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"festivaltickets/pkg/logger"
	"festivaltickets/pkg/metrics"
)

// Handler runs one job. A returned error schedules a retry.
type Handler func(ctx context.Context, job Job) error

// ProcessorConfig holds the polling settings
type ProcessorConfig struct {
	PollInterval time.Duration
	RetryDelay   time.Duration
	MaxAttempts  int
	BatchSize    int

	// Lease is how long a claimed job stays invisible to other workers.
	// It must outlast the slowest handler.
	Lease time.Duration
}

// DefaultProcessorConfig returns sensible defaults
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval: 30 * time.Second,
		RetryDelay:   1 * time.Minute,
		MaxAttempts:  5,
		BatchSize:    50,
		Lease:        5 * time.Minute,
	}
}

// Processor polls the scheduler for due jobs and dispatches them by kind.
type Processor struct {
	scheduler Scheduler
	config    ProcessorConfig
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu       sync.RWMutex
	handlers map[Kind]Handler

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewProcessor creates a processor. m may be nil.
func NewProcessor(scheduler Scheduler, cfg ProcessorConfig, log *logger.Logger, m *metrics.Metrics) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultProcessorConfig().BatchSize
	}
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultProcessorConfig().Lease
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Processor{
		scheduler: scheduler,
		config:    cfg,
		log:       log.WithComponent("job_processor"),
		metrics:   m,
		now:       time.Now,
		handlers:  make(map[Kind]Handler),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Register binds handler to kind, replacing any previous one.
func (p *Processor) Register(kind Kind, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[kind] = handler
}

// Start runs the poll loop until ctx is cancelled or Stop is called.
func (p *Processor) Start(ctx context.Context) {
	p.log.Info("Job processor started",
		slog.Duration("poll_interval", p.config.PollInterval),
		slog.Int("batch_size", p.config.BatchSize),
	)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	defer close(p.doneCh)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Job processor stopped (context cancelled)")
			return
		case <-p.stopCh:
			p.log.Info("Job processor stopped")
			return
		case <-ticker.C:
			p.RunDue(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for it.
func (p *Processor) Stop() {
	close(p.stopCh)
	<-p.doneCh
}

// RunDue processes one batch of due jobs and returns how many were handled
// successfully.
func (p *Processor) RunDue(ctx context.Context) int {
	now := p.now()
	ids, err := p.scheduler.Due(ctx, now, p.config.BatchSize)
	if err != nil {
		p.log.Error("Failed to fetch due jobs", slog.Any("error", err))
		return 0
	}

	done := 0
	for _, id := range ids {
		job, err := p.scheduler.Claim(ctx, id, now, p.config.Lease)
		if errors.Is(err, ErrNotClaimed) {
			continue
		}
		if err != nil {
			p.log.Error("Failed to claim job", slog.String("job_id", id), slog.Any("error", err))
			continue
		}
		if p.run(ctx, *job) {
			done++
		}
	}
	return done
}

func (p *Processor) run(ctx context.Context, job Job) bool {
	p.mu.RLock()
	handler, ok := p.handlers[job.Kind]
	p.mu.RUnlock()

	jobLog := p.log.With(
		slog.String("job_id", job.ID.String()),
		slog.String("kind", string(job.Kind)),
	)

	if !ok {
		jobLog.Error("No handler registered for job kind")
		p.metrics.ObserveJob(string(job.Kind), "unhandled")
		p.complete(ctx, job)
		return false
	}

	err := handler(ctx, job)
	if err == nil {
		p.complete(ctx, job)
		p.metrics.ObserveJob(string(job.Kind), "success")
		jobLog.Info("Job completed")
		return true
	}

	job.Attempts++
	if job.Attempts >= p.config.MaxAttempts {
		jobLog.Error("Job failed permanently", slog.Int("attempts", job.Attempts), slog.Any("error", err))
		p.metrics.ObserveJob(string(job.Kind), "failed")
		p.complete(ctx, job)
		return false
	}

	next := p.now().Add(p.config.RetryDelay)
	if rerr := p.scheduler.Retry(ctx, job, next); rerr != nil {
		jobLog.Error("Failed to reschedule job", slog.Any("error", rerr))
	}
	jobLog.Warn("Job failed, retry scheduled",
		slog.Int("attempts", job.Attempts),
		slog.Time("retry_at", next),
		slog.Any("error", err),
	)
	p.metrics.ObserveJob(string(job.Kind), "retry")
	return false
}

func (p *Processor) complete(ctx context.Context, job Job) {
	if err := p.scheduler.Complete(ctx, job.ID.String()); err != nil {
		p.log.Error("Failed to drop job payload", slog.String("job_id", job.ID.String()), slog.Any("error", err))
	}
}
