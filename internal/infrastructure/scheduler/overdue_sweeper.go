package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OverdueMarker marks every pending bill due before now as overdue and
// returns how many changed.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// OverdueSweeperConfig holds configuration for the overdue sweep
type OverdueSweeperConfig struct {
	Interval   time.Duration
	JobTimeout time.Duration
}

// OverdueSweeper runs the overdue sweep once at start and then on a fixed
// interval until stopped.
type OverdueSweeper struct {
	config OverdueSweeperConfig
	marker OverdueMarker
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweeper creates a new sweeper
func NewOverdueSweeper(config OverdueSweeperConfig, marker OverdueMarker, logger *zap.Logger) *OverdueSweeper {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 5 * time.Minute
	}
	return &OverdueSweeper{
		config: config,
		marker: marker,
		logger: logger.Named("overdue_sweeper"),
		now:    time.Now,
	}
}

// Start launches the sweep loop
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Overdue sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop stops the loop and waits for an in-flight sweep, or returns when
// ctx is done.
func (s *OverdueSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OverdueSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep bounded by the job timeout
func (s *OverdueSweeper) RunOnce(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	count, err := s.marker.MarkOverdue(jobCtx, s.now())
	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Int("marked", count),
			zap.Error(err),
		)
		return
	}
	if count > 0 {
		s.logger.Info("Bills marked overdue",
			zap.Int("marked", count),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
