package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when a sweep is triggered while the
// scheduler is stopped
var ErrSchedulerNotRunning = errors.New("sweep scheduler is not running")

// SweepJob is one daily maintenance job. Implementations must be idempotent
// per calendar day.
type SweepJob interface {
	Name() string
	Run(ctx context.Context, today time.Time) error
}

// SweepScheduler fires the registered sweep jobs once a day on a cron
// schedule. Jobs run sequentially; a failing job does not block the others.
type SweepScheduler struct {
	cfg    config.SweepConfig
	jobs   []SweepJob
	logger *zap.Logger
	cron   *cron.Cron
	now    func() time.Time

	mu        sync.Mutex
	isRunning bool
}

// NewSweepScheduler creates a new SweepScheduler
func NewSweepScheduler(cfg config.SweepConfig, logger *zap.Logger, jobs ...SweepJob) *SweepScheduler {
	return &SweepScheduler{
		cfg:    cfg,
		jobs:   jobs,
		logger: logger,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// WithClock overrides the scheduler's clock, for tests
func (s *SweepScheduler) WithClock(now func() time.Time) *SweepScheduler {
	s.now = now
	return s
}

// Start registers the cron entry and starts the scheduler. Disabled
// configuration makes Start a no-op so a worker-less deployment stays quiet.
func (s *SweepScheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("sweep scheduler disabled by configuration")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.DailyCronSchedule, func() {
		s.RunAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep cron schedule %q: %w", s.cfg.DailyCronSchedule, err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("sweep scheduler started",
		zap.String("schedule", s.cfg.DailyCronSchedule),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
		zap.Int("jobs", len(s.jobs)),
	)
	return nil
}

// Stop stops the scheduler and waits for an in-flight sweep to finish
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// RunAll runs every registered job for the current day. Also the entry point
// for manual triggering from the admin surface.
func (s *SweepScheduler) RunAll(ctx context.Context) {
	today := s.now()

	for _, job := range s.jobs {
		s.runJob(ctx, job, today)
	}
}

// TriggerNow runs all jobs immediately, outside the cron schedule
func (s *SweepScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running && s.cfg.Enabled {
		return ErrSchedulerNotRunning
	}

	s.RunAll(ctx)
	return nil
}

func (s *SweepScheduler) runJob(ctx context.Context, job SweepJob, today time.Time) {
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	started := s.now()
	s.logger.Info("sweep job starting",
		zap.String("job", job.Name()),
		zap.Time("run_date", today),
	)

	if err := job.Run(jobCtx, today); err != nil {
		s.logger.Error("sweep job failed",
			zap.String("job", job.Name()),
			zap.Duration("elapsed", s.now().Sub(started)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("sweep job completed",
		zap.String("job", job.Name()),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
}
