package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeJob struct {
	mu   sync.Mutex
	name string
	runs []time.Time
	fail error
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(_ context.Context, today time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, today)
	return j.fail
}

func (j *fakeJob) runCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.runs)
}

func testSweepConfig() config.SweepConfig {
	return config.SweepConfig{
		Enabled:           true,
		DailyCronSchedule: "0 2 * * *",
		JobTimeout:        time.Minute,
	}
}

func TestSweepScheduler_RunAll(t *testing.T) {
	day := time.Date(2026, 6, 15, 2, 0, 0, 0, time.UTC)

	t.Run("runs every registered job with the current day", func(t *testing.T) {
		first := &fakeJob{name: "lease_expiry"}
		second := &fakeJob{name: "payment_due"}
		s := NewSweepScheduler(testSweepConfig(), zap.NewNop(), first, second).
			WithClock(func() time.Time { return day })

		s.RunAll(context.Background())

		require.Equal(t, 1, first.runCount())
		require.Equal(t, 1, second.runCount())
		assert.Equal(t, day, first.runs[0])
	})

	t.Run("a failing job does not block the rest", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		failing := &fakeJob{name: "lease_expiry", fail: errors.New("db down")}
		healthy := &fakeJob{name: "payment_due"}
		s := NewSweepScheduler(testSweepConfig(), zap.New(core), failing, healthy).
			WithClock(func() time.Time { return day })

		s.RunAll(context.Background())

		assert.Equal(t, 1, healthy.runCount())
		assert.Equal(t, 1, logs.FilterMessage("sweep job failed").Len())
	})
}

func TestSweepScheduler_StartStop(t *testing.T) {
	t.Run("disabled scheduler does not register cron entries", func(t *testing.T) {
		cfg := testSweepConfig()
		cfg.Enabled = false
		s := NewSweepScheduler(cfg, zap.NewNop(), &fakeJob{name: "lease_expiry"})

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
	})

	t.Run("invalid cron schedule fails fast", func(t *testing.T) {
		cfg := testSweepConfig()
		cfg.DailyCronSchedule = "not a schedule"
		s := NewSweepScheduler(cfg, zap.NewNop(), &fakeJob{name: "lease_expiry"})

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid sweep cron schedule")
	})

	t.Run("start and stop are idempotent", func(t *testing.T) {
		s := NewSweepScheduler(testSweepConfig(), zap.NewNop(), &fakeJob{name: "lease_expiry"})

		ctx := context.Background()
		require.NoError(t, s.Start(ctx))
		require.NoError(t, s.Start(ctx))
		require.NoError(t, s.Stop(ctx))
		require.NoError(t, s.Stop(ctx))
	})
}

func TestSweepScheduler_TriggerNow(t *testing.T) {
	t.Run("stopped scheduler rejects manual trigger", func(t *testing.T) {
		s := NewSweepScheduler(testSweepConfig(), zap.NewNop(), &fakeJob{name: "lease_expiry"})

		err := s.TriggerNow(context.Background())
		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("running scheduler sweeps on demand", func(t *testing.T) {
		job := &fakeJob{name: "lease_expiry"}
		s := NewSweepScheduler(testSweepConfig(), zap.NewNop(), job)

		ctx := context.Background()
		require.NoError(t, s.Start(ctx))
		defer s.Stop(ctx)

		require.NoError(t, s.TriggerNow(ctx))
		assert.Equal(t, 1, job.runCount())
	})
}
