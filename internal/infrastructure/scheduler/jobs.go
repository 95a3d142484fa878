package scheduler

import (
	"context"
	"time"

	leaseapp "github.com/rentfolio/backend/internal/application/leasing"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"go.uber.org/zap"
)

// LeaseExpiryJob adapts the expiry sweep service to the scheduler
type LeaseExpiryJob struct {
	service *leaseapp.ExpirySweepService
	logger  *zap.Logger
}

// NewLeaseExpiryJob creates a new LeaseExpiryJob
func NewLeaseExpiryJob(service *leaseapp.ExpirySweepService, logger *zap.Logger) *LeaseExpiryJob {
	return &LeaseExpiryJob{service: service, logger: logger}
}

// Name returns the job name used for per-day idempotence tracking
func (j *LeaseExpiryJob) Name() string {
	return leasing.SweepJobLeaseExpiry
}

// Run executes the expiry sweep for the given day
func (j *LeaseExpiryJob) Run(ctx context.Context, today time.Time) error {
	result, err := j.service.Run(ctx, today)
	if err != nil {
		return err
	}
	if result.Skipped {
		j.logger.Info("expiry sweep already ran today", zap.Time("run_date", result.RunDate))
		return nil
	}
	j.logger.Info("expiry sweep finished",
		zap.Int("leases_scanned", result.LeasesScanned),
		zap.Int("notices_sent", result.NoticesSent),
		zap.Int("leases_expired", result.LeasesExpired),
	)
	return nil
}

// PaymentDueJob adapts the payment due sweep service to the scheduler
type PaymentDueJob struct {
	service *leaseapp.DueSweepService
	logger  *zap.Logger
}

// NewPaymentDueJob creates a new PaymentDueJob
func NewPaymentDueJob(service *leaseapp.DueSweepService, logger *zap.Logger) *PaymentDueJob {
	return &PaymentDueJob{service: service, logger: logger}
}

// Name returns the job name used for per-day idempotence tracking
func (j *PaymentDueJob) Name() string {
	return leasing.SweepJobPaymentDue
}

// Run executes the payment due sweep for the given day
func (j *PaymentDueJob) Run(ctx context.Context, today time.Time) error {
	result, err := j.service.Run(ctx, today)
	if err != nil {
		return err
	}
	if result.Skipped {
		j.logger.Info("payment due sweep already ran today", zap.Time("run_date", result.RunDate))
		return nil
	}
	j.logger.Info("payment due sweep finished",
		zap.Int("payments_scanned", result.PaymentsScanned),
		zap.Int("reminders_sent", result.RemindersSent),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("overdue_nags", result.OverdueNags),
	)
	return nil
}

var (
	_ SweepJob = (*LeaseExpiryJob)(nil)
	_ SweepJob = (*PaymentDueJob)(nil)
)
