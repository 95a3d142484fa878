package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a rent payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"  // Recorded, money not yet received
	PaymentStatusPaid     PaymentStatus = "PAID"     // Explicitly marked paid
	PaymentStatusOverdue  PaymentStatus = "OVERDUE"  // Written solely by the daily due sweep
	PaymentStatusRefunded PaymentStatus = "REFUNDED" // Processor callback: refunded
	PaymentStatusFailed   PaymentStatus = "FAILED"   // Processor callback: charge failed
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue,
		PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsSettled returns true once no further collection is expected
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusRefunded
}

// CanMarkPaid returns true if the payment can still be marked paid
func (s PaymentStatus) CanMarkPaid() bool {
	return s == PaymentStatusPending || s == PaymentStatusOverdue || s == PaymentStatusFailed
}

// PaymentMethod represents how a rent payment was made
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodBankTransfer, PaymentMethodCheck,
		PaymentMethodCash, PaymentMethodOnline:
		return true
	}
	return false
}

// RentPayment represents a single billing cycle's payment for a lease.
// At most one payment exists per (lease, payment date).
type RentPayment struct {
	shared.BaseAggregateRoot
	LeaseID       uuid.UUID       `json:"lease_id" gorm:"type:uuid;not null;uniqueIndex:idx_payment_lease_date,priority:1"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentDate   time.Time       `json:"payment_date" gorm:"type:date;not null;uniqueIndex:idx_payment_lease_date,priority:2"`
	DueDate       time.Time       `json:"due_date" gorm:"type:date;not null;index"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TransactionID string          `json:"transaction_id,omitempty" gorm:"type:varchar(100)"`
	Processor     string          `json:"processor,omitempty" gorm:"type:varchar(50)"`
	LateFee       decimal.Decimal `json:"late_fee" gorm:"type:decimal(10,2);not null;default:0"`
	Notes         string          `json:"notes,omitempty" gorm:"type:text"`
	ProcessedBy   *uuid.UUID      `json:"processed_by,omitempty" gorm:"type:uuid"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

// TableName returns the table name for GORM
func (RentPayment) TableName() string {
	return "rent_payments"
}

// NewRentPaymentInput carries the fields needed to record a payment
type NewRentPaymentInput struct {
	LeaseID       uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	DueDate       time.Time
	PaymentMethod PaymentMethod
	LateFee       decimal.Decimal
	Notes         string
}

// NewRentPayment creates a rent payment in PENDING status
func NewRentPayment(input NewRentPaymentInput) (*RentPayment, error) {
	if input.LeaseID == uuid.Nil {
		return nil, shared.NewValidationError("lease_id", "lease is required")
	}
	if !input.Amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "amount must be positive")
	}
	if input.PaymentDate.IsZero() {
		return nil, shared.NewValidationError("payment_date", "payment date is required")
	}
	if input.DueDate.IsZero() {
		return nil, shared.NewValidationError("due_date", "due date is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, shared.NewValidationError("payment_method", "unknown payment method")
	}
	if input.LateFee.IsNegative() {
		return nil, shared.NewValidationError("late_fee", "late fee cannot be negative")
	}

	p := &RentPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeaseID:           input.LeaseID,
		Amount:            input.Amount,
		PaymentDate:       DateOnly(input.PaymentDate),
		DueDate:           DateOnly(input.DueDate),
		PaymentMethod:     input.PaymentMethod,
		Status:            PaymentStatusPending,
		LateFee:           input.LateFee,
		Notes:             input.Notes,
	}

	p.AddDomainEvent(NewRentPaymentCreatedEvent(p))

	return p, nil
}

// IsLate is a pure function of status, due date, and today; it is recomputed
// on read and never stored, except that OVERDUE itself is written once by
// the due sweep so "all overdue payments" stays an indexed query.
func (p *RentPayment) IsLate(today time.Time) bool {
	if p.Status == PaymentStatusOverdue {
		return true
	}
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusFailed {
		return false
	}
	if p.DueDate.IsZero() {
		return false
	}
	return DateOnly(today).After(DateOnly(p.DueDate))
}

// TotalAmount returns the amount including late fees
func (p *RentPayment) TotalAmount() decimal.Decimal {
	return p.Amount.Add(p.LateFee)
}

// MarkPaid settles the payment and records processor metadata. Authorization
// (owner or admin) is enforced by the application layer before this is called.
func (p *RentPayment) MarkPaid(actorID uuid.UUID, transactionID, processor, notes string) error {
	if !p.Status.CanMarkPaid() {
		return shared.NewDomainError("INVALID_STATE", "Payment cannot be marked paid in status "+p.Status.String())
	}
	now := time.Now()
	p.Status = PaymentStatusPaid
	p.ProcessedBy = &actorID
	p.ProcessedAt = &now
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	if processor != "" {
		p.Processor = processor
	}
	if notes != "" {
		p.Notes = notes
	}
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewRentPaymentReceivedEvent(p))

	return nil
}

// MarkOverdue transitions a still-pending payment to OVERDUE. Only the daily
// due sweep calls this, the day after the due date.
func (p *RentPayment) MarkOverdue(today time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending payments become overdue")
	}
	p.Status = PaymentStatusOverdue
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewRentPaymentOverdueEvent(p, DaysBetween(p.DueDate, today)))

	return nil
}

// MarkRefunded records a processor-initiated refund
func (p *RentPayment) MarkRefunded(transactionID string) error {
	if p.Status != PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Only paid payments can be refunded")
	}
	p.Status = PaymentStatusRefunded
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// MarkFailed records a processor-reported charge failure
func (p *RentPayment) MarkFailed(reason string) error {
	if p.Status.IsSettled() {
		return shared.NewDomainError("INVALID_STATE", "Settled payments cannot fail")
	}
	p.Status = PaymentStatusFailed
	if reason != "" {
		if p.Notes != "" {
			p.Notes += "\n"
		}
		p.Notes += "Failed: " + reason
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
