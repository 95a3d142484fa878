package leasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeaseStatus represents the lifecycle status of a lease
type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "DRAFT"      // Created, start date in the future, not signed
	LeaseStatusPending    LeaseStatus = "PENDING"    // Awaiting signature, start date in the future
	LeaseStatusActive     LeaseStatus = "ACTIVE"     // Start date reached, end date not passed
	LeaseStatusExpired    LeaseStatus = "EXPIRED"    // End date passed
	LeaseStatusTerminated LeaseStatus = "TERMINATED" // Explicitly ended; sticky terminal state
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusPending, LeaseStatusActive,
		LeaseStatusExpired, LeaseStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status blocks all derived transitions
func (s LeaseStatus) IsTerminal() bool {
	return s == LeaseStatusTerminated
}

// leaseTransitions encodes which derived transitions are allowed.
// Renewal is the only path out of EXPIRED and is handled explicitly by Renew.
var leaseTransitions = map[LeaseStatus][]LeaseStatus{
	LeaseStatusDraft:      {LeaseStatusPending, LeaseStatusActive, LeaseStatusExpired, LeaseStatusTerminated},
	LeaseStatusPending:    {LeaseStatusActive, LeaseStatusExpired, LeaseStatusTerminated},
	LeaseStatusActive:     {LeaseStatusExpired, LeaseStatusTerminated},
	LeaseStatusExpired:    {LeaseStatusActive, LeaseStatusTerminated},
	LeaseStatusTerminated: {},
}

// CanTransitionTo returns true if the transition from s to target is allowed
func (s LeaseStatus) CanTransitionTo(target LeaseStatus) bool {
	for _, allowed := range leaseTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Lease duration bounds in days, enforced at creation
const (
	MinLeaseDurationDays = 30
	MaxLeaseDurationDays = 3650
)

// MaxRenewalNoticeDays is the upper bound for the renewal notice window
const MaxRenewalNoticeDays = 365

// DataCorrection records a self-healing repair applied to a lease during
// status derivation. Corrections are logged for audit, never surfaced as
// errors, so legacy records with dirty dates stay writable.
type DataCorrection struct {
	Field    string `json:"field"`
	Reason   string `json:"reason"`
	Old      string `json:"old"`
	Repaired string `json:"repaired"`
}

// Lease represents a rental agreement aggregate root.
// Status is derived from dates on every persist; only TERMINATED is set
// explicitly and never overwritten by derivation.
type Lease struct {
	shared.BaseAggregateRoot
	PropertyID        uuid.UUID       `json:"property_id" gorm:"type:uuid;not null;uniqueIndex:idx_lease_property_tenant_start,priority:1"`
	TenantID          *uuid.UUID      `json:"tenant_id" gorm:"type:uuid;index;uniqueIndex:idx_lease_property_tenant_start,priority:2"` // nullable: tenant removal keeps the lease
	StartDate         time.Time       `json:"lease_start_date" gorm:"type:date;not null;uniqueIndex:idx_lease_property_tenant_start,priority:3"`
	EndDate           time.Time       `json:"lease_end_date" gorm:"type:date;not null;index"`
	SignedDate        *time.Time      `json:"signed_date,omitempty" gorm:"type:date"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent" gorm:"type:decimal(10,2);not null"`
	DepositAmount     decimal.Decimal `json:"deposit_amount" gorm:"type:decimal(10,2);not null;default:0"`
	PetDeposit        decimal.Decimal `json:"pet_deposit" gorm:"type:decimal(10,2);not null;default:0"`
	LateFee           decimal.Decimal `json:"late_fee" gorm:"type:decimal(10,2);not null;default:0"`
	DocumentURL       string          `json:"lease_document_url,omitempty" gorm:"type:varchar(500)"`
	Status            LeaseStatus     `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	AutoRenew         bool            `json:"auto_renew" gorm:"not null;default:false"`
	RenewalNoticeDays int             `json:"renewal_notice_days" gorm:"not null;default:30"`
	Notes             string          `json:"notes,omitempty" gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Lease) TableName() string {
	return "leases"
}

// DateOnly truncates a timestamp to a calendar date (midnight UTC)
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative if b < a)
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// NewLeaseInput carries the fields needed to create a lease
type NewLeaseInput struct {
	PropertyID        uuid.UUID
	TenantID          *uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	SignedDate        *time.Time
	MonthlyRent       decimal.Decimal
	DepositAmount     decimal.Decimal
	PetDeposit        decimal.Decimal
	LateFee           decimal.Decimal
	DocumentURL       string
	AutoRenew         bool
	RenewalNoticeDays int
	Notes             string
}

// NewLease creates a lease in DRAFT status. Unlike derivation on persist,
// creation validates strictly and rejects malformed input.
func NewLease(input NewLeaseInput) (*Lease, error) {
	if input.PropertyID == uuid.Nil {
		return nil, shared.NewValidationError("property_id", "property is required")
	}
	start := DateOnly(input.StartDate)
	end := DateOnly(input.EndDate)
	if start.IsZero() || input.StartDate.IsZero() {
		return nil, shared.NewValidationError("lease_start_date", "start date is required")
	}
	if input.EndDate.IsZero() {
		return nil, shared.NewValidationError("lease_end_date", "end date is required")
	}
	if !end.After(start) {
		return nil, shared.NewValidationError("lease_end_date", "end date must be after start date")
	}
	duration := DaysBetween(start, end)
	if duration < MinLeaseDurationDays || duration > MaxLeaseDurationDays {
		return nil, shared.NewValidationError("lease_end_date",
			fmt.Sprintf("lease duration must be between %d and %d days, got %d",
				MinLeaseDurationDays, MaxLeaseDurationDays, duration))
	}
	if input.MonthlyRent.IsNegative() {
		return nil, shared.NewValidationError("monthly_rent", "monthly rent cannot be negative")
	}
	if input.DepositAmount.IsNegative() {
		return nil, shared.NewValidationError("deposit_amount", "deposit amount cannot be negative")
	}
	if input.PetDeposit.IsNegative() {
		return nil, shared.NewValidationError("pet_deposit", "pet deposit cannot be negative")
	}
	if input.LateFee.IsNegative() {
		return nil, shared.NewValidationError("late_fee", "late fee cannot be negative")
	}
	noticeDays := input.RenewalNoticeDays
	if noticeDays == 0 {
		noticeDays = 30
	}
	if noticeDays < 0 || noticeDays > MaxRenewalNoticeDays {
		return nil, shared.NewValidationError("renewal_notice_days",
			fmt.Sprintf("renewal notice days must be between 0 and %d", MaxRenewalNoticeDays))
	}

	var signed *time.Time
	if input.SignedDate != nil {
		d := DateOnly(*input.SignedDate)
		signed = &d
	}

	lease := &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        input.PropertyID,
		TenantID:          input.TenantID,
		StartDate:         start,
		EndDate:           end,
		SignedDate:        signed,
		MonthlyRent:       input.MonthlyRent,
		DepositAmount:     input.DepositAmount,
		PetDeposit:        input.PetDeposit,
		LateFee:           input.LateFee,
		DocumentURL:       input.DocumentURL,
		Status:            LeaseStatusDraft,
		AutoRenew:         input.AutoRenew,
		RenewalNoticeDays: noticeDays,
		Notes:             input.Notes,
	}

	lease.AddDomainEvent(NewLeaseCreatedEvent(lease))

	return lease, nil
}

// DeriveStatus recomputes the lease status from its dates as of today.
// Malformed dates are repaired rather than rejected; every repair is
// reported as a DataCorrection for the caller to log. TERMINATED is sticky
// and suppresses all derived transitions.
//
// Must be called on every persist. Returns the corrections applied.
func (l *Lease) DeriveStatus(today time.Time) []DataCorrection {
	today = DateOnly(today)
	var corrections []DataCorrection

	if l.StartDate.IsZero() {
		corrections = append(corrections, DataCorrection{
			Field:    "lease_start_date",
			Reason:   "missing or unparseable start date",
			Old:      "",
			Repaired: today.Format(time.DateOnly),
		})
		l.StartDate = today
	} else {
		l.StartDate = DateOnly(l.StartDate)
	}

	if l.EndDate.IsZero() {
		repaired := l.StartDate.AddDate(1, 0, 0)
		corrections = append(corrections, DataCorrection{
			Field:    "lease_end_date",
			Reason:   "missing or unparseable end date",
			Old:      "",
			Repaired: repaired.Format(time.DateOnly),
		})
		l.EndDate = repaired
	} else {
		l.EndDate = DateOnly(l.EndDate)
	}

	if !l.EndDate.After(l.StartDate) {
		repaired := l.StartDate.AddDate(1, 0, 0)
		corrections = append(corrections, DataCorrection{
			Field:    "lease_end_date",
			Reason:   "end date not after start date",
			Old:      l.EndDate.Format(time.DateOnly),
			Repaired: repaired.Format(time.DateOnly),
		})
		l.EndDate = repaired
	}

	if l.Status.IsTerminal() {
		return corrections
	}

	switch {
	case today.After(l.EndDate):
		if l.Status != LeaseStatusExpired {
			l.Status = LeaseStatusExpired
			l.AddDomainEvent(NewLeaseExpiredEvent(l))
		}
	case !today.Before(l.StartDate):
		if l.Status != LeaseStatusActive {
			l.Status = LeaseStatusActive
			l.AddDomainEvent(NewLeaseActivatedEvent(l))
		}
	default:
		// Start date still in the future: keep DRAFT/PENDING as-is
	}

	return corrections
}

// DaysRemaining returns the whole days until the end date, never negative.
// Returns 0 for a missing end date instead of failing.
func (l *Lease) DaysRemaining(today time.Time) int {
	if l.EndDate.IsZero() {
		return 0
	}
	days := DaysBetween(today, l.EndDate)
	if days < 0 {
		return 0
	}
	return days
}

// IsEndingSoon returns true when the lease ends within its renewal notice window
func (l *Lease) IsEndingSoon(today time.Time) bool {
	days := l.DaysRemaining(today)
	return days >= 0 && days <= l.RenewalNoticeDays
}

// IsExpired returns true when today is past the end date
func (l *Lease) IsExpired(today time.Time) bool {
	if l.EndDate.IsZero() {
		return false
	}
	return DateOnly(today).After(DateOnly(l.EndDate))
}

// IsCurrentlyActive returns true when the lease is ACTIVE and today falls
// inside the lease period. This is the predicate occupancy and income
// aggregation are built on.
func (l *Lease) IsCurrentlyActive(today time.Time) bool {
	if l.Status != LeaseStatusActive {
		return false
	}
	d := DateOnly(today)
	return !d.Before(l.StartDate) && !d.After(l.EndDate)
}

// DaysPerRenewalMonth is the fixed day count used for renewal arithmetic.
// Renewals deliberately use 30-day months rather than calendar months.
const DaysPerRenewalMonth = 30

// RenewalResult reports the outcome of a renewal
type RenewalResult struct {
	PreviousEndDate time.Time
	NewEndDate      time.Time
	DurationDays    int
	// ExceedsCeiling is true when the post-renewal duration passes the
	// creation-time ceiling. Renewal does not reject in that case; callers
	// log a warning instead.
	ExceedsCeiling bool
}

// Renew extends the lease by renewalMonths * 30 days and forces the lease
// back to ACTIVE regardless of date derivation. This is the only path out
// of EXPIRED. A terminated lease cannot be renewed.
func (l *Lease) Renew(renewalMonths int, newRent *decimal.Decimal) (*RenewalResult, error) {
	if l.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot renew a terminated lease")
	}
	if renewalMonths <= 0 {
		return nil, shared.NewValidationError("renewal_months", "renewal months must be positive")
	}
	if newRent != nil && newRent.IsNegative() {
		return nil, shared.NewValidationError("new_rent", "new rent cannot be negative")
	}

	previousEnd := l.EndDate
	l.EndDate = DateOnly(l.EndDate).AddDate(0, 0, DaysPerRenewalMonth*renewalMonths)
	if newRent != nil {
		l.MonthlyRent = *newRent
	}
	l.Status = LeaseStatusActive
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	duration := DaysBetween(l.StartDate, l.EndDate)
	result := &RenewalResult{
		PreviousEndDate: previousEnd,
		NewEndDate:      l.EndDate,
		DurationDays:    duration,
		ExceedsCeiling:  duration > MaxLeaseDurationDays,
	}

	l.AddDomainEvent(NewLeaseRenewedEvent(l, previousEnd, renewalMonths))

	return result, nil
}

// Terminate moves the lease to the sticky TERMINATED state. Subsequent
// derivation never transitions out of it.
func (l *Lease) Terminate(reason string) error {
	if l.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Lease is already terminated")
	}
	previousStatus := l.Status
	l.Status = LeaseStatusTerminated
	if reason != "" {
		if l.Notes != "" {
			l.Notes += "\n"
		}
		l.Notes += "Terminated: " + reason
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLeaseTerminatedEvent(l, previousStatus, reason))

	return nil
}
