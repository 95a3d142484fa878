package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/portfolio"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeaseService provides application-level lease operations. Every mutating
// operation takes the acting user explicitly; authorization is owner-or-admin
// resolved through the lease's property.
type LeaseService struct {
	leaseRepo      leasing.LeaseRepository
	propertyRepo   portfolio.PropertyRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(
	leaseRepo leasing.LeaseRepository,
	propertyRepo portfolio.PropertyRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *LeaseService {
	return &LeaseService{
		leaseRepo:      leaseRepo,
		propertyRepo:   propertyRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock overrides the service clock, used by tests and the sweep runner
func (s *LeaseService) WithClock(now func() time.Time) *LeaseService {
	s.now = now
	return s
}

// CreateLeaseRequest carries the fields for creating a lease
type CreateLeaseRequest struct {
	PropertyID        uuid.UUID        `json:"property_id" binding:"required"`
	TenantID          *uuid.UUID       `json:"tenant_id"`
	StartDate         time.Time        `json:"lease_start_date" binding:"required"`
	EndDate           time.Time        `json:"lease_end_date" binding:"required"`
	SignedDate        *time.Time       `json:"signed_date"`
	MonthlyRent       decimal.Decimal  `json:"monthly_rent" binding:"required"`
	DepositAmount     decimal.Decimal  `json:"deposit_amount"`
	PetDeposit        decimal.Decimal  `json:"pet_deposit"`
	LateFee           decimal.Decimal  `json:"late_fee"`
	DocumentURL       string           `json:"lease_document_url"`
	AutoRenew         bool             `json:"auto_renew"`
	RenewalNoticeDays int              `json:"renewal_notice_days"`
	Notes             string           `json:"notes"`
}

// UpdateLeaseRequest carries the mutable lease fields plus the version the
// caller read. A stale version fails with CONCURRENCY_CONFLICT.
type UpdateLeaseRequest struct {
	Version           int              `json:"version" binding:"required"`
	TenantID          *uuid.UUID       `json:"tenant_id"`
	StartDate         *time.Time       `json:"lease_start_date"`
	EndDate           *time.Time       `json:"lease_end_date"`
	SignedDate        *time.Time       `json:"signed_date"`
	MonthlyRent       *decimal.Decimal `json:"monthly_rent"`
	DepositAmount     *decimal.Decimal `json:"deposit_amount"`
	PetDeposit        *decimal.Decimal `json:"pet_deposit"`
	LateFee           *decimal.Decimal `json:"late_fee"`
	DocumentURL       *string          `json:"lease_document_url"`
	AutoRenew         *bool            `json:"auto_renew"`
	RenewalNoticeDays *int             `json:"renewal_notice_days"`
	Notes             *string          `json:"notes"`
}

// RenewLeaseRequest carries renewal parameters
type RenewLeaseRequest struct {
	RenewalMonths int              `json:"renewal_months" binding:"required"`
	NewRent       *decimal.Decimal `json:"new_rent"`
}

// TerminateLeaseRequest carries the termination reason
type TerminateLeaseRequest struct {
	Reason string `json:"reason"`
}

// LeaseListFilter defines filtering options for lease list queries
type LeaseListFilter struct {
	PropertyID *uuid.UUID `form:"property_id"`
	TenantID   *uuid.UUID `form:"tenant_id"`
	Status     string     `form:"status"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// LeaseResponse represents a lease in API responses
type LeaseResponse struct {
	ID                uuid.UUID       `json:"id"`
	PropertyID        uuid.UUID       `json:"property_id"`
	TenantID          *uuid.UUID      `json:"tenant_id,omitempty"`
	StartDate         time.Time       `json:"lease_start_date"`
	EndDate           time.Time       `json:"lease_end_date"`
	SignedDate        *time.Time      `json:"signed_date,omitempty"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	PetDeposit        decimal.Decimal `json:"pet_deposit"`
	LateFee           decimal.Decimal `json:"late_fee"`
	DocumentURL       string          `json:"lease_document_url,omitempty"`
	Status            string          `json:"status"`
	AutoRenew         bool            `json:"auto_renew"`
	RenewalNoticeDays int             `json:"renewal_notice_days"`
	DaysRemaining     int             `json:"days_remaining"`
	IsEndingSoon      bool            `json:"is_ending_soon"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

func (s *LeaseService) toResponse(lease *leasing.Lease) *LeaseResponse {
	today := s.now()
	return &LeaseResponse{
		ID:                lease.ID,
		PropertyID:        lease.PropertyID,
		TenantID:          lease.TenantID,
		StartDate:         lease.StartDate,
		EndDate:           lease.EndDate,
		SignedDate:        lease.SignedDate,
		MonthlyRent:       lease.MonthlyRent,
		DepositAmount:     lease.DepositAmount,
		PetDeposit:        lease.PetDeposit,
		LateFee:           lease.LateFee,
		DocumentURL:       lease.DocumentURL,
		Status:            lease.Status.String(),
		AutoRenew:         lease.AutoRenew,
		RenewalNoticeDays: lease.RenewalNoticeDays,
		DaysRemaining:     lease.DaysRemaining(today),
		IsEndingSoon:      lease.IsEndingSoon(today),
		Notes:             lease.Notes,
		CreatedAt:         lease.CreatedAt,
		UpdatedAt:         lease.UpdatedAt,
		Version:           lease.Version,
	}
}

// authorizeManage loads the lease's property and checks the actor may manage it
func (s *LeaseService) authorizeManage(ctx context.Context, actor *identity.User, propertyID uuid.UUID) (*portfolio.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	if !actor.IsAdmin() && !property.IsOwnedBy(actor.ID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the property owner or an admin may manage this lease")
	}
	return property, nil
}

func (s *LeaseService) canView(actor *identity.User, lease *leasing.Lease, property *portfolio.Property) bool {
	if actor.IsAdmin() {
		return true
	}
	if property != nil && property.IsOwnedBy(actor.ID) {
		return true
	}
	return lease.TenantID != nil && *lease.TenantID == actor.ID
}

// logCorrections logs self-healing date repairs applied during derivation
func (s *LeaseService) logCorrections(leaseID uuid.UUID, corrections []leasing.DataCorrection) {
	for _, c := range corrections {
		s.logger.Warn("Repaired lease dates during status derivation",
			zap.String("lease_id", leaseID.String()),
			zap.String("field", c.Field),
			zap.String("reason", c.Reason),
			zap.String("old", c.Old),
			zap.String("repaired", c.Repaired))
	}
}

func (s *LeaseService) publishEvents(ctx context.Context, lease *leasing.Lease) {
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

// CreateLease creates a lease. Status is derived immediately, so a lease
// starting today is returned already ACTIVE.
func (s *LeaseService) CreateLease(ctx context.Context, actor *identity.User, req CreateLeaseRequest) (*LeaseResponse, error) {
	if _, err := s.authorizeManage(ctx, actor, req.PropertyID); err != nil {
		return nil, err
	}

	exists, err := s.leaseRepo.ExistsForPropertyTenantStart(ctx, req.PropertyID, req.TenantID, leasing.DateOnly(req.StartDate))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A lease for this property, tenant, and start date already exists")
	}

	lease, err := leasing.NewLease(leasing.NewLeaseInput{
		PropertyID:        req.PropertyID,
		TenantID:          req.TenantID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		SignedDate:        req.SignedDate,
		MonthlyRent:       req.MonthlyRent,
		DepositAmount:     req.DepositAmount,
		PetDeposit:        req.PetDeposit,
		LateFee:           req.LateFee,
		DocumentURL:       req.DocumentURL,
		AutoRenew:         req.AutoRenew,
		RenewalNoticeDays: req.RenewalNoticeDays,
		Notes:             req.Notes,
	})
	if err != nil {
		return nil, err
	}

	corrections := lease.DeriveStatus(s.now())
	s.logCorrections(lease.ID, corrections)

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("Lease created",
		zap.String("lease_id", lease.ID.String()),
		zap.String("property_id", lease.PropertyID.String()),
		zap.String("status", lease.Status.String()),
		zap.String("actor_id", actor.ID.String()))

	s.publishEvents(ctx, lease)

	return s.toResponse(lease), nil
}

// GetLease returns a lease visible to the actor
func (s *LeaseService) GetLease(ctx context.Context, actor *identity.User, id uuid.UUID) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Lease not found")
	}

	property, err := s.propertyRepo.FindByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, lease, property) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not allowed to view this lease")
	}

	return s.toResponse(lease), nil
}

// ListLeases lists leases visible to the actor. Tenants are restricted to
// their own leases; owners see leases on their properties via the filter.
func (s *LeaseService) ListLeases(ctx context.Context, actor *identity.User, filter LeaseListFilter) ([]LeaseResponse, int64, error) {
	domainFilter := leasing.LeaseFilter{
		PropertyID: filter.PropertyID,
		TenantID:   filter.TenantID,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Status != "" {
		status := leasing.LeaseStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("status", "unknown lease status")
		}
		domainFilter.Status = &status
	}
	if actor.Role == identity.UserRoleTenant {
		domainFilter.TenantID = &actor.ID
	}

	page, err := s.leaseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LeaseResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, *s.toResponse(&page.Items[i]))
	}
	return responses, page.Total, nil
}

// UpdateLease updates lease fields with a compare-and-swap on the version the
// caller read, then re-derives status before persisting.
func (s *LeaseService) UpdateLease(ctx context.Context, actor *identity.User, id uuid.UUID, req UpdateLeaseRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Lease not found")
	}
	if _, err := s.authorizeManage(ctx, actor, lease.PropertyID); err != nil {
		return nil, err
	}
	if req.Version != lease.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	if req.TenantID != nil {
		lease.TenantID = req.TenantID
	}
	if req.StartDate != nil {
		lease.StartDate = leasing.DateOnly(*req.StartDate)
	}
	if req.EndDate != nil {
		lease.EndDate = leasing.DateOnly(*req.EndDate)
	}
	if req.SignedDate != nil {
		d := leasing.DateOnly(*req.SignedDate)
		lease.SignedDate = &d
	}
	if req.MonthlyRent != nil {
		if req.MonthlyRent.IsNegative() {
			return nil, shared.NewValidationError("monthly_rent", "monthly rent cannot be negative")
		}
		lease.MonthlyRent = *req.MonthlyRent
	}
	if req.DepositAmount != nil {
		lease.DepositAmount = *req.DepositAmount
	}
	if req.PetDeposit != nil {
		lease.PetDeposit = *req.PetDeposit
	}
	if req.LateFee != nil {
		lease.LateFee = *req.LateFee
	}
	if req.DocumentURL != nil {
		lease.DocumentURL = *req.DocumentURL
	}
	if req.AutoRenew != nil {
		lease.AutoRenew = *req.AutoRenew
	}
	if req.RenewalNoticeDays != nil {
		if *req.RenewalNoticeDays < 0 || *req.RenewalNoticeDays > leasing.MaxRenewalNoticeDays {
			return nil, shared.NewValidationError("renewal_notice_days", "renewal notice days out of range")
		}
		lease.RenewalNoticeDays = *req.RenewalNoticeDays
	}
	if req.Notes != nil {
		lease.Notes = *req.Notes
	}

	corrections := lease.DeriveStatus(s.now())
	s.logCorrections(lease.ID, corrections)

	lease.UpdatedAt = s.now()
	lease.IncrementVersion()

	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, lease)

	return s.toResponse(lease), nil
}

// RenewLease extends the lease term and forces it back to ACTIVE
func (s *LeaseService) RenewLease(ctx context.Context, actor *identity.User, id uuid.UUID, req RenewLeaseRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Lease not found")
	}
	if _, err := s.authorizeManage(ctx, actor, lease.PropertyID); err != nil {
		return nil, err
	}

	result, err := lease.Renew(req.RenewalMonths, req.NewRent)
	if err != nil {
		return nil, err
	}
	if result.ExceedsCeiling {
		s.logger.Warn("Renewed lease duration exceeds the creation-time ceiling",
			zap.String("lease_id", lease.ID.String()),
			zap.Int("duration_days", result.DurationDays))
	}

	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("Lease renewed",
		zap.String("lease_id", lease.ID.String()),
		zap.Time("previous_end", result.PreviousEndDate),
		zap.Time("new_end", result.NewEndDate),
		zap.String("actor_id", actor.ID.String()))

	s.publishEvents(ctx, lease)

	return s.toResponse(lease), nil
}

// TerminateLease moves a lease into the sticky TERMINATED state
func (s *LeaseService) TerminateLease(ctx context.Context, actor *identity.User, id uuid.UUID, req TerminateLeaseRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Lease not found")
	}
	if _, err := s.authorizeManage(ctx, actor, lease.PropertyID); err != nil {
		return nil, err
	}

	if err := lease.Terminate(req.Reason); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("Lease terminated",
		zap.String("lease_id", lease.ID.String()),
		zap.String("actor_id", actor.ID.String()))

	s.publishEvents(ctx, lease)

	return s.toResponse(lease), nil
}

// ListExpiringSoon lists ACTIVE and PENDING leases ending within the given
// number of days, soonest first
func (s *LeaseService) ListExpiringSoon(ctx context.Context, actor *identity.User, withinDays int) ([]LeaseResponse, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	today := leasing.DateOnly(s.now())
	statuses := []leasing.LeaseStatus{leasing.LeaseStatusActive, leasing.LeaseStatusPending}
	leases, err := s.leaseRepo.FindEndingBetween(ctx, today, today.AddDate(0, 0, withinDays), statuses)
	if err != nil {
		return nil, err
	}

	responses := make([]LeaseResponse, 0, len(leases))
	for i := range leases {
		lease := &leases[i]
		property, err := s.propertyRepo.FindByID(ctx, lease.PropertyID)
		if err != nil {
			return nil, err
		}
		if !s.canView(actor, lease, property) {
			continue
		}
		responses = append(responses, *s.toResponse(lease))
	}
	return responses, nil
}
