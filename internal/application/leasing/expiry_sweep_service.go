package leasing

import (
	"context"
	"time"

	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/portfolio"
	"github.com/rentfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpiryNoticeWindows are the days-before-end marks at which an expiry
// reminder is published. The zero window fires on the end date itself.
var ExpiryNoticeWindows = []int{60, 30, 15, 7, 0}

// ExpirySweepResult summarizes one expiry sweep run
type ExpirySweepResult struct {
	RunDate       time.Time
	Skipped       bool // true when the sweep already ran for this day
	NoticesSent   int
	LeasesExpired int
	LeasesScanned int
}

// ExpirySweepService is the daily job that publishes expiry reminders at the
// notice windows and persists the ACTIVE -> EXPIRED transition for leases
// whose end date has passed.
type ExpirySweepService struct {
	leaseRepo      leasing.LeaseRepository
	propertyRepo   portfolio.PropertyRepository
	userRepo       identity.UserRepository
	sweepRunRepo   leasing.SweepRunRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExpirySweepService creates a new ExpirySweepService
func NewExpirySweepService(
	leaseRepo leasing.LeaseRepository,
	propertyRepo portfolio.PropertyRepository,
	userRepo identity.UserRepository,
	sweepRunRepo leasing.SweepRunRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ExpirySweepService {
	return &ExpirySweepService{
		leaseRepo:      leaseRepo,
		propertyRepo:   propertyRepo,
		userRepo:       userRepo,
		sweepRunRepo:   sweepRunRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Run executes the expiry sweep for the given day. Re-running for a day that
// already completed is a no-op; each calendar day is swept at most once.
func (s *ExpirySweepService) Run(ctx context.Context, today time.Time) (*ExpirySweepResult, error) {
	today = leasing.DateOnly(today)
	result := &ExpirySweepResult{RunDate: today}

	ran, err := s.sweepRunRepo.HasRun(ctx, leasing.SweepJobLeaseExpiry, today)
	if err != nil {
		return nil, err
	}
	if ran {
		s.logger.Info("Lease expiry sweep already ran today, skipping",
			zap.Time("run_date", today))
		result.Skipped = true
		return result, nil
	}

	for _, window := range ExpiryNoticeWindows {
		target := today.AddDate(0, 0, window)
		leases, err := s.leaseRepo.FindEndingOn(ctx, target)
		if err != nil {
			return nil, err
		}
		for i := range leases {
			lease := &leases[i]
			result.LeasesScanned++
			s.publishExpiring(ctx, lease, window)
			result.NoticesSent++
		}
	}

	expired, err := s.expireOverdueLeases(ctx, today)
	if err != nil {
		return nil, err
	}
	result.LeasesExpired = expired

	run := leasing.NewSweepRun(leasing.SweepJobLeaseExpiry, today, result.LeasesScanned, result.NoticesSent+result.LeasesExpired)
	if err := s.sweepRunRepo.Record(ctx, run); err != nil {
		// A concurrent runner finished first; treat this run as skipped
		if derr, ok := err.(*shared.DomainError); ok && derr.Code == "ALREADY_EXISTS" {
			result.Skipped = true
			return result, nil
		}
		return nil, err
	}

	s.logger.Info("Lease expiry sweep completed",
		zap.Time("run_date", today),
		zap.Int("notices_sent", result.NoticesSent),
		zap.Int("leases_expired", result.LeasesExpired))

	return result, nil
}

// expireOverdueLeases persists EXPIRED for leases whose end date has passed
// but whose stored status lags behind
func (s *ExpirySweepService) expireOverdueLeases(ctx context.Context, today time.Time) (int, error) {
	lagging := []leasing.LeaseStatus{
		leasing.LeaseStatusDraft,
		leasing.LeaseStatusPending,
		leasing.LeaseStatusActive,
	}
	candidates, err := s.leaseRepo.FindEndingBetween(ctx, today.AddDate(-1, 0, 0), today.AddDate(0, 0, -1), lagging)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		lease := &candidates[i]
		if lease.Status == leasing.LeaseStatusExpired || lease.Status.IsTerminal() {
			continue
		}
		corrections := lease.DeriveStatus(today)
		for _, c := range corrections {
			s.logger.Warn("Repaired lease dates during expiry sweep",
				zap.String("lease_id", lease.ID.String()),
				zap.String("field", c.Field),
				zap.String("reason", c.Reason))
		}
		if lease.Status != leasing.LeaseStatusExpired {
			continue
		}
		lease.IncrementVersion()
		if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
			// Lost the race to a concurrent writer; the next sweep retries
			s.logger.Warn("Skipping lease expiry persist after conflict",
				zap.String("lease_id", lease.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
		s.publishLeaseEvents(ctx, lease)
	}
	return expired, nil
}

func (s *ExpirySweepService) publishExpiring(ctx context.Context, lease *leasing.Lease, window int) {
	tenantName := ""
	if lease.TenantID != nil {
		if tenant, err := s.userRepo.FindByID(ctx, *lease.TenantID); err == nil && tenant != nil {
			tenantName = tenant.FullName()
		}
	}
	propertyName := ""
	if property, err := s.propertyRepo.FindByID(ctx, lease.PropertyID); err == nil && property != nil {
		propertyName = property.Name
	}

	event := leasing.NewLeaseExpiringEvent(lease, window, tenantName, propertyName)
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish lease expiring event",
				zap.String("lease_id", lease.ID.String()),
				zap.Int("days_until_end", window),
				zap.Error(err))
		}
	}
}

func (s *ExpirySweepService) publishLeaseEvents(ctx context.Context, lease *leasing.Lease) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range lease.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish lease event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	lease.ClearDomainEvents()
}
