package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeaseCreatedEvent is raised when a new lease is created
type LeaseCreatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID       `json:"lease_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	TenantID    *uuid.UUID      `json:"tenant_id,omitempty"`
	StartDate   time.Time       `json:"lease_start_date"`
	EndDate     time.Time       `json:"lease_end_date"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
}

// EventType returns the event type name
func (e *LeaseCreatedEvent) EventType() string {
	return "LeaseCreated"
}

// NewLeaseCreatedEvent creates a new LeaseCreatedEvent
func NewLeaseCreatedEvent(l *Lease) *LeaseCreatedEvent {
	return &LeaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeaseCreated", "Lease", l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		MonthlyRent:     l.MonthlyRent,
	}
}

// LeaseActivatedEvent is raised when derivation moves a lease to ACTIVE
type LeaseActivatedEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID  `json:"lease_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	EndDate    time.Time  `json:"lease_end_date"`
}

// EventType returns the event type name
func (e *LeaseActivatedEvent) EventType() string {
	return "LeaseActivated"
}

// NewLeaseActivatedEvent creates a new LeaseActivatedEvent
func NewLeaseActivatedEvent(l *Lease) *LeaseActivatedEvent {
	return &LeaseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeaseActivated", "Lease", l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		EndDate:         l.EndDate,
	}
}

// LeaseExpiredEvent is raised when derivation moves a lease to EXPIRED
type LeaseExpiredEvent struct {
	shared.BaseDomainEvent
	LeaseID    uuid.UUID  `json:"lease_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	EndDate    time.Time  `json:"lease_end_date"`
}

// EventType returns the event type name
func (e *LeaseExpiredEvent) EventType() string {
	return "LeaseExpired"
}

// NewLeaseExpiredEvent creates a new LeaseExpiredEvent
func NewLeaseExpiredEvent(l *Lease) *LeaseExpiredEvent {
	return &LeaseExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeaseExpired", "Lease", l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		EndDate:         l.EndDate,
	}
}

// LeaseExpiringEvent is raised by the expiry sweep when a lease end date
// crosses one of the notice windows. A lease can raise one per window over
// its life; windows are not deduplicated against each other.
type LeaseExpiringEvent struct {
	shared.BaseDomainEvent
	LeaseID       uuid.UUID  `json:"lease_id"`
	PropertyID    uuid.UUID  `json:"property_id"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	EndDate       time.Time  `json:"lease_end_date"`
	DaysUntilEnd  int        `json:"days_until_end"`
	TenantName    string     `json:"tenant_name,omitempty"`
	PropertyName  string     `json:"property_name,omitempty"`
	MonthlyRentAt string     `json:"monthly_rent,omitempty"`
}

// EventType returns the event type name
func (e *LeaseExpiringEvent) EventType() string {
	return "LeaseExpiring"
}

// NewLeaseExpiringEvent creates a new LeaseExpiringEvent for a notice window
func NewLeaseExpiringEvent(l *Lease, daysUntilEnd int, tenantName, propertyName string) *LeaseExpiringEvent {
	return &LeaseExpiringEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeaseExpiring", "Lease", l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		TenantID:        l.TenantID,
		EndDate:         l.EndDate,
		DaysUntilEnd:    daysUntilEnd,
		TenantName:      tenantName,
		PropertyName:    propertyName,
		MonthlyRentAt:   l.MonthlyRent.StringFixed(2),
	}
}

// LeaseRenewedEvent is raised when a lease is explicitly renewed
type LeaseRenewedEvent struct {
	shared.BaseDomainEvent
	LeaseID         uuid.UUID       `json:"lease_id"`
	PropertyID      uuid.UUID       `json:"property_id"`
	PreviousEndDate time.Time       `json:"previous_end_date"`
	NewEndDate      time.Time       `json:"new_end_date"`
	RenewalMonths   int             `json:"renewal_months"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
}

// EventType returns the event type name
func (e *LeaseRenewedEvent) EventType() string {
	return "LeaseRenewed"
}

// NewLeaseRenewedEvent creates a new LeaseRenewedEvent
func NewLeaseRenewedEvent(l *Lease, previousEnd time.Time, renewalMonths int) *LeaseRenewedEvent {
	return &LeaseRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeaseRenewed", "Lease", l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		PreviousEndDate: previousEnd,
		NewEndDate:      l.EndDate,
		RenewalMonths:   renewalMonths,
		MonthlyRent:     l.MonthlyRent,
	}
}

// LeaseTerminatedEvent is raised when a lease is explicitly terminated
type LeaseTerminatedEvent struct {
	shared.BaseDomainEvent
	LeaseID        uuid.UUID   `json:"lease_id"`
	PropertyID     uuid.UUID   `json:"property_id"`
	PreviousStatus LeaseStatus `json:"previous_status"`
	Reason         string      `json:"reason,omitempty"`
}

// EventType returns the event type name
func (e *LeaseTerminatedEvent) EventType() string {
	return "LeaseTerminated"
}

// NewLeaseTerminatedEvent creates a new LeaseTerminatedEvent
func NewLeaseTerminatedEvent(l *Lease, previousStatus LeaseStatus, reason string) *LeaseTerminatedEvent {
	return &LeaseTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeaseTerminated", "Lease", l.ID),
		LeaseID:         l.ID,
		PropertyID:      l.PropertyID,
		PreviousStatus:  previousStatus,
		Reason:          reason,
	}
}
