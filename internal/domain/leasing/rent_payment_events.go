package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RentPaymentCreatedEvent is raised when a rent payment is recorded
type RentPaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	LeaseID   uuid.UUID       `json:"lease_id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *RentPaymentCreatedEvent) EventType() string {
	return "RentPaymentCreated"
}

// NewRentPaymentCreatedEvent creates a new RentPaymentCreatedEvent
func NewRentPaymentCreatedEvent(p *RentPayment) *RentPaymentCreatedEvent {
	return &RentPaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RentPaymentCreated", "RentPayment", p.ID),
		PaymentID:       p.ID,
		LeaseID:         p.LeaseID,
		Amount:          p.Amount,
		DueDate:         p.DueDate,
	}
}

// RentPaymentDueSoonEvent is raised by the due sweep three days before the
// due date for payments still pending
type RentPaymentDueSoonEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID       `json:"payment_id"`
	LeaseID      uuid.UUID       `json:"lease_id"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
	DaysUntilDue int             `json:"days_until_due"`
}

// EventType returns the event type name
func (e *RentPaymentDueSoonEvent) EventType() string {
	return "RentPaymentDueSoon"
}

// NewRentPaymentDueSoonEvent creates a new RentPaymentDueSoonEvent
func NewRentPaymentDueSoonEvent(p *RentPayment, daysUntilDue int) *RentPaymentDueSoonEvent {
	return &RentPaymentDueSoonEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RentPaymentDueSoon", "RentPayment", p.ID),
		PaymentID:       p.ID,
		LeaseID:         p.LeaseID,
		Amount:          p.Amount,
		DueDate:         p.DueDate,
		DaysUntilDue:    daysUntilDue,
	}
}

// RentPaymentOverdueEvent is raised when the due sweep marks a payment overdue,
// and again on Mondays while it stays unpaid
type RentPaymentOverdueEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	LeaseID     uuid.UUID       `json:"lease_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     time.Time       `json:"due_date"`
	DaysOverdue int             `json:"days_overdue"`
}

// EventType returns the event type name
func (e *RentPaymentOverdueEvent) EventType() string {
	return "RentPaymentOverdue"
}

// NewRentPaymentOverdueEvent creates a new RentPaymentOverdueEvent
func NewRentPaymentOverdueEvent(p *RentPayment, daysOverdue int) *RentPaymentOverdueEvent {
	return &RentPaymentOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RentPaymentOverdue", "RentPayment", p.ID),
		PaymentID:       p.ID,
		LeaseID:         p.LeaseID,
		TotalAmount:     p.TotalAmount(),
		DueDate:         p.DueDate,
		DaysOverdue:     daysOverdue,
	}
}

// RentPaymentReceivedEvent is raised when a payment is marked paid
type RentPaymentReceivedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	LeaseID     uuid.UUID       `json:"lease_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ProcessedBy *uuid.UUID      `json:"processed_by,omitempty"`
}

// EventType returns the event type name
func (e *RentPaymentReceivedEvent) EventType() string {
	return "RentPaymentReceived"
}

// NewRentPaymentReceivedEvent creates a new RentPaymentReceivedEvent
func NewRentPaymentReceivedEvent(p *RentPayment) *RentPaymentReceivedEvent {
	return &RentPaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RentPaymentReceived", "RentPayment", p.ID),
		PaymentID:       p.ID,
		LeaseID:         p.LeaseID,
		TotalAmount:     p.TotalAmount(),
		ProcessedBy:     p.ProcessedBy,
	}
}
