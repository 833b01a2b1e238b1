package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wrls/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReissueJob reissues the flagged bills of every region
type ReissueJob interface {
	RunAll(ctx context.Context) error
}

// ReissueSchedulerConfig holds configuration for the reissue scheduler
type ReissueSchedulerConfig struct {
	// Hour and Minute are the UTC time of day the job runs
	Hour   int
	Minute int

	// CheckInterval is how often the clock is checked
	CheckInterval time.Duration

	// JobTimeout bounds a single run; zero means no limit
	JobTimeout time.Duration
}

// DefaultReissueSchedulerConfig returns the default scheduler configuration
func DefaultReissueSchedulerConfig() ReissueSchedulerConfig {
	return ReissueSchedulerConfig{
		Hour:          2,
		CheckInterval: time.Minute,
		JobTimeout:    30 * time.Minute,
	}
}

// ReissueSchedulerConfigFrom builds the scheduler configuration from the
// application config
func ReissueSchedulerConfigFrom(cfg config.SchedulerConfig) ReissueSchedulerConfig {
	c := DefaultReissueSchedulerConfig()
	c.Hour = cfg.ReissueHour
	if cfg.JobTimeout > 0 {
		c.JobTimeout = cfg.JobTimeout
	}
	return c
}

// Validate checks the configuration
func (c ReissueSchedulerConfig) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidConfig, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidConfig, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// ReissueScheduler runs the reissue job once a day at the configured time
type ReissueScheduler struct {
	config ReissueSchedulerConfig
	job    ReissueJob
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewReissueScheduler creates a new reissue scheduler
func NewReissueScheduler(cfg ReissueSchedulerConfig, job ReissueJob, logger *zap.Logger) (*ReissueScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ReissueScheduler{
		config: cfg,
		job:    job,
		logger: logger.Named("reissue_scheduler"),
		now:    time.Now,
	}, nil
}

// Start starts the scheduler loop. Starting a running scheduler is a no-op.
func (s *ReissueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reissue scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
	return nil
}

// Stop stops the scheduler and waits for a run in progress, or for ctx to end
func (s *ReissueScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Reissue scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler loop is running
func (s *ReissueScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *ReissueScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun runs the job when the scheduled time has been reached and it
// has not yet run today
func (s *ReissueScheduler) checkAndRun(ctx context.Context) bool {
	now := s.now().UTC()
	today := now.Format(time.DateOnly)

	s.mu.Lock()
	if s.lastRunDate == today {
		s.mu.Unlock()
		return false
	}
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, s.config.Minute, 0, 0, time.UTC)
	if now.Before(scheduled) {
		s.mu.Unlock()
		return false
	}
	s.lastRunDate = today
	s.mu.Unlock()

	s.RunNow(ctx)
	return true
}

// RunNow runs the reissue job immediately, bounded by the job timeout
func (s *ReissueScheduler) RunNow(ctx context.Context) {
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	start := s.now()
	s.logger.Info("Reissue run started")

	if err := s.job.RunAll(ctx); err != nil {
		s.logger.Error("Reissue run failed",
			zap.Duration("elapsed", s.now().Sub(start)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Reissue run completed", zap.Duration("elapsed", s.now().Sub(start)))
}
