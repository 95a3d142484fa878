package leasing

import (
	"context"
	"time"

	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DueSoonLeadDays is how many days before the due date the reminder fires
const DueSoonLeadDays = 3

// DueSweepResult summarizes one payment due sweep run
type DueSweepResult struct {
	RunDate         time.Time
	Skipped         bool // true when the sweep already ran for this day
	RemindersSent   int
	MarkedOverdue   int
	OverdueNags     int
	PaymentsScanned int
}

// DueSweepService is the daily job over rent payments. It sends a reminder
// three days before the due date, is the sole writer of the OVERDUE status
// the day after the due date passes, and re-nags outstanding overdue
// payments on Mondays only.
type DueSweepService struct {
	paymentRepo    leasing.RentPaymentRepository
	sweepRunRepo   leasing.SweepRunRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDueSweepService creates a new DueSweepService
func NewDueSweepService(
	paymentRepo leasing.RentPaymentRepository,
	sweepRunRepo leasing.SweepRunRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *DueSweepService {
	return &DueSweepService{
		paymentRepo:    paymentRepo,
		sweepRunRepo:   sweepRunRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Run executes the payment due sweep for the given day. Each calendar day is
// swept at most once.
func (s *DueSweepService) Run(ctx context.Context, today time.Time) (*DueSweepResult, error) {
	today = leasing.DateOnly(today)
	result := &DueSweepResult{RunDate: today}

	ran, err := s.sweepRunRepo.HasRun(ctx, leasing.SweepJobPaymentDue, today)
	if err != nil {
		return nil, err
	}
	if ran {
		s.logger.Info("Payment due sweep already ran today, skipping",
			zap.Time("run_date", today))
		result.Skipped = true
		return result, nil
	}

	if err := s.sendDueSoonReminders(ctx, today, result); err != nil {
		return nil, err
	}
	if err := s.markOverdue(ctx, today, result); err != nil {
		return nil, err
	}
	if today.Weekday() == time.Monday {
		if err := s.nagOverdue(ctx, today, result); err != nil {
			return nil, err
		}
	}

	run := leasing.NewSweepRun(leasing.SweepJobPaymentDue, today, result.PaymentsScanned,
		result.RemindersSent+result.MarkedOverdue+result.OverdueNags)
	if err := s.sweepRunRepo.Record(ctx, run); err != nil {
		if derr, ok := err.(*shared.DomainError); ok && derr.Code == "ALREADY_EXISTS" {
			result.Skipped = true
			return result, nil
		}
		return nil, err
	}

	s.logger.Info("Payment due sweep completed",
		zap.Time("run_date", today),
		zap.Int("reminders_sent", result.RemindersSent),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("overdue_nags", result.OverdueNags))

	return result, nil
}

// sendDueSoonReminders publishes a reminder for pending payments due exactly
// DueSoonLeadDays from today
func (s *DueSweepService) sendDueSoonReminders(ctx context.Context, today time.Time, result *DueSweepResult) error {
	payments, err := s.paymentRepo.FindPendingDueOn(ctx, today.AddDate(0, 0, DueSoonLeadDays))
	if err != nil {
		return err
	}
	for i := range payments {
		payment := &payments[i]
		result.PaymentsScanned++
		s.publish(ctx, leasing.NewRentPaymentDueSoonEvent(payment, DueSoonLeadDays))
		result.RemindersSent++
	}
	return nil
}

// markOverdue flips pending payments past their due date to OVERDUE. The
// transition waits until the day after the due date; paying on the due date
// itself is on time.
func (s *DueSweepService) markOverdue(ctx context.Context, today time.Time, result *DueSweepResult) error {
	payments, err := s.paymentRepo.FindPendingDueBefore(ctx, today)
	if err != nil {
		return err
	}
	for i := range payments {
		payment := &payments[i]
		result.PaymentsScanned++
		if err := payment.MarkOverdue(today); err != nil {
			continue
		}
		if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
			// Concurrent settle wins over the sweep
			s.logger.Warn("Skipping overdue persist after conflict",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
			continue
		}
		result.MarkedOverdue++
		for _, event := range payment.GetDomainEvents() {
			s.publish(ctx, event)
		}
		payment.ClearDomainEvents()
	}
	return nil
}

// nagOverdue re-publishes overdue notices for payments still outstanding.
// Runs Mondays only so owners get one weekly digest trigger, not daily noise.
func (s *DueSweepService) nagOverdue(ctx context.Context, today time.Time, result *DueSweepResult) error {
	payments, err := s.paymentRepo.FindOverdue(ctx)
	if err != nil {
		return err
	}
	for i := range payments {
		payment := &payments[i]
		result.PaymentsScanned++
		daysOverdue := leasing.DaysBetween(payment.DueDate, today)
		s.publish(ctx, leasing.NewRentPaymentOverdueEvent(payment, daysOverdue))
		result.OverdueNags++
	}
	return nil
}

func (s *DueSweepService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment sweep event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
