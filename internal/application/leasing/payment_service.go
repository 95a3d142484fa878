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

// PaymentService provides application-level rent payment operations.
// Marking a payment paid records who processed it; only the property owner
// or an admin may do so.
type PaymentService struct {
	paymentRepo    leasing.RentPaymentRepository
	leaseRepo      leasing.LeaseRepository
	propertyRepo   portfolio.PropertyRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo leasing.RentPaymentRepository,
	leaseRepo leasing.LeaseRepository,
	propertyRepo portfolio.PropertyRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		leaseRepo:      leaseRepo,
		propertyRepo:   propertyRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock overrides the service clock for tests
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// CreatePaymentRequest carries the fields for recording a rent payment
type CreatePaymentRequest struct {
	LeaseID       uuid.UUID       `json:"lease_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   time.Time       `json:"payment_date" binding:"required"`
	DueDate       time.Time       `json:"due_date" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	LateFee       decimal.Decimal `json:"late_fee"`
	Notes         string          `json:"notes"`
}

// MarkPaidRequest carries processor metadata for settling a payment
type MarkPaidRequest struct {
	TransactionID string `json:"transaction_id"`
	Processor     string `json:"processor"`
	Notes         string `json:"notes"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	LeaseID  *uuid.UUID `form:"lease_id"`
	Status   string     `form:"status"`
	DueFrom  *time.Time `form:"due_from"`
	DueTo    *time.Time `form:"due_to"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// PaymentResponse represents a rent payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	LeaseID       uuid.UUID       `json:"lease_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	DueDate       time.Time       `json:"due_date"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Processor     string          `json:"processor,omitempty"`
	LateFee       decimal.Decimal `json:"late_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IsLate        bool            `json:"is_late"`
	Notes         string          `json:"notes,omitempty"`
	ProcessedBy   *uuid.UUID      `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

func (s *PaymentService) toResponse(payment *leasing.RentPayment) *PaymentResponse {
	return &PaymentResponse{
		ID:            payment.ID,
		LeaseID:       payment.LeaseID,
		Amount:        payment.Amount,
		PaymentDate:   payment.PaymentDate,
		DueDate:       payment.DueDate,
		PaymentMethod: string(payment.PaymentMethod),
		Status:        payment.Status.String(),
		TransactionID: payment.TransactionID,
		Processor:     payment.Processor,
		LateFee:       payment.LateFee,
		TotalAmount:   payment.TotalAmount(),
		IsLate:        payment.IsLate(s.now()),
		Notes:         payment.Notes,
		ProcessedBy:   payment.ProcessedBy,
		ProcessedAt:   payment.ProcessedAt,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
		Version:       payment.Version,
	}
}

// loadLeaseProperty resolves the lease and its property for authorization
func (s *PaymentService) loadLeaseProperty(ctx context.Context, leaseID uuid.UUID) (*leasing.Lease, *portfolio.Property, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, nil, err
	}
	if lease == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Lease not found")
	}
	property, err := s.propertyRepo.FindByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	return lease, property, nil
}

func (s *PaymentService) canManage(actor *identity.User, property *portfolio.Property) bool {
	if actor.IsAdmin() {
		return true
	}
	return property != nil && property.IsOwnedBy(actor.ID)
}

func (s *PaymentService) canView(actor *identity.User, lease *leasing.Lease, property *portfolio.Property) bool {
	if s.canManage(actor, property) {
		return true
	}
	return lease.TenantID != nil && *lease.TenantID == actor.ID
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *leasing.RentPayment) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish payment event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	payment.ClearDomainEvents()
}

// CreatePayment records a rent payment for a lease. Duplicate payments for
// the same lease and payment date are rejected.
func (s *PaymentService) CreatePayment(ctx context.Context, actor *identity.User, req CreatePaymentRequest) (*PaymentResponse, error) {
	lease, property, err := s.loadLeaseProperty(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, lease, property) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not allowed to record payments for this lease")
	}

	paymentDate := leasing.DateOnly(req.PaymentDate)
	exists, err := s.paymentRepo.ExistsForLeaseAndDate(ctx, req.LeaseID, paymentDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A payment for this lease and payment date already exists")
	}

	payment, err := leasing.NewRentPayment(leasing.NewRentPaymentInput{
		LeaseID:       req.LeaseID,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		DueDate:       req.DueDate,
		PaymentMethod: leasing.PaymentMethod(req.PaymentMethod),
		LateFee:       req.LateFee,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("Rent payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("lease_id", payment.LeaseID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)))

	s.publishEvents(ctx, payment)

	return s.toResponse(payment), nil
}

// GetPayment returns a payment visible to the actor
func (s *PaymentService) GetPayment(ctx context.Context, actor *identity.User, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	lease, property, err := s.loadLeaseProperty(ctx, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, lease, property) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not allowed to view this payment")
	}
	return s.toResponse(payment), nil
}

// ListPayments lists payments with filtering
func (s *PaymentService) ListPayments(ctx context.Context, actor *identity.User, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := leasing.RentPaymentFilter{
		LeaseID: filter.LeaseID,
		DueFrom: filter.DueFrom,
		DueTo:   filter.DueTo,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Status != "" {
		status := leasing.PaymentStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("status", "unknown payment status")
		}
		domainFilter.Status = &status
	}

	page, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(page.Items))
	for i := range page.Items {
		payment := &page.Items[i]
		lease, property, err := s.loadLeaseProperty(ctx, payment.LeaseID)
		if err != nil {
			return nil, 0, err
		}
		if !s.canView(actor, lease, property) {
			continue
		}
		responses = append(responses, *s.toResponse(payment))
	}
	return responses, page.Total, nil
}

// ListByLease lists all payments for a lease, newest first
func (s *PaymentService) ListByLease(ctx context.Context, actor *identity.User, leaseID uuid.UUID) ([]PaymentResponse, error) {
	lease, property, err := s.loadLeaseProperty(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, lease, property) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not allowed to view payments for this lease")
	}

	payments, err := s.paymentRepo.FindByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *s.toResponse(&payments[i]))
	}
	return responses, nil
}

// MarkPaid settles a payment, stamping the actor as processor. Only the
// property owner or an admin may settle.
func (s *PaymentService) MarkPaid(ctx context.Context, actor *identity.User, id uuid.UUID, req MarkPaidRequest) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	_, property, err := s.loadLeaseProperty(ctx, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, property) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the property owner or an admin may mark payments paid")
	}

	if err := payment.MarkPaid(actor.ID, req.TransactionID, req.Processor, req.Notes); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("Rent payment marked paid",
		zap.String("payment_id", payment.ID.String()),
		zap.String("actor_id", actor.ID.String()))

	s.publishEvents(ctx, payment)

	return s.toResponse(payment), nil
}

// HandleRefund records a processor refund callback
func (s *PaymentService) HandleRefund(ctx context.Context, paymentID uuid.UUID, transactionID string) error {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	if err := payment.MarkRefunded(transactionID); err != nil {
		return err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return err
	}
	s.logger.Info("Rent payment refunded", zap.String("payment_id", paymentID.String()))
	return nil
}

// HandleFailure records a processor charge-failure callback
func (s *PaymentService) HandleFailure(ctx context.Context, paymentID uuid.UUID, reason string) error {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	if err := payment.MarkFailed(reason); err != nil {
		return err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return err
	}
	s.logger.Warn("Rent payment failed",
		zap.String("payment_id", paymentID.String()),
		zap.String("reason", reason))
	return nil
}

// ListOverdue lists all overdue payments visible to the actor
func (s *PaymentService) ListOverdue(ctx context.Context, actor *identity.User) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindOverdue(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		payment := &payments[i]
		lease, property, err := s.loadLeaseProperty(ctx, payment.LeaseID)
		if err != nil {
			return nil, err
		}
		if !s.canView(actor, lease, property) {
			continue
		}
		responses = append(responses, *s.toResponse(payment))
	}
	return responses, nil
}
