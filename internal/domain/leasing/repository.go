package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeaseFilter defines filtering options for lease queries
type LeaseFilter struct {
	shared.Filter
	PropertyID *uuid.UUID   // Filter by property
	TenantID   *uuid.UUID   // Filter by tenant
	Status     *LeaseStatus // Filter by status
	EndFrom    *time.Time   // Filter by end date range start
	EndTo      *time.Time   // Filter by end date range end
}

// LeaseRepository defines the interface for lease persistence
type LeaseRepository interface {
	// FindByID finds a lease by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)

	// FindAll finds leases with filtering and pagination
	FindAll(ctx context.Context, filter LeaseFilter) (*shared.Paginated[Lease], error)

	// FindByProperty finds all leases for a property
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]Lease, error)

	// FindActiveByProperty finds the active lease covering today for a property, if any
	FindActiveByProperty(ctx context.Context, propertyID uuid.UUID, today time.Time) (*Lease, error)

	// FindByStatus finds leases in a given status
	FindByStatus(ctx context.Context, status LeaseStatus) ([]Lease, error)

	// FindEndingOn finds ACTIVE leases whose end date equals the given day
	FindEndingOn(ctx context.Context, day time.Time) ([]Lease, error)

	// FindEndingBetween finds leases in one of the given statuses ending
	// within [from, to]
	FindEndingBetween(ctx context.Context, from, to time.Time, statuses []LeaseStatus) ([]Lease, error)

	// FindCurrentlyActive finds leases that are ACTIVE and cover the given day
	FindCurrentlyActive(ctx context.Context, today time.Time) ([]Lease, error)

	// ExistsForPropertyTenantStart reports whether a lease already exists with
	// the same property, tenant, and start date
	ExistsForPropertyTenantStart(ctx context.Context, propertyID uuid.UUID, tenantID *uuid.UUID, startDate time.Time) (bool, error)

	// Save creates or updates a lease
	Save(ctx context.Context, lease *Lease) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, lease *Lease) error

	// Delete removes a lease
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus counts leases in a given status
	CountByStatus(ctx context.Context, status LeaseStatus) (int64, error)
}

// RentPaymentFilter defines filtering options for payment queries
type RentPaymentFilter struct {
	shared.Filter
	LeaseID  *uuid.UUID     // Filter by lease
	Status   *PaymentStatus // Filter by status
	DueFrom  *time.Time     // Filter by due date range start
	DueTo    *time.Time     // Filter by due date range end
	PaidFrom *time.Time     // Filter by processed date range start
	PaidTo   *time.Time     // Filter by processed date range end
}

// RentPaymentRepository defines the interface for rent payment persistence
type RentPaymentRepository interface {
	// FindByID finds a rent payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RentPayment, error)

	// FindAll finds payments with filtering and pagination
	FindAll(ctx context.Context, filter RentPaymentFilter) (*shared.Paginated[RentPayment], error)

	// FindByLease finds all payments for a lease, newest payment date first
	FindByLease(ctx context.Context, leaseID uuid.UUID) ([]RentPayment, error)

	// FindPendingDueOn finds pending payments due on the given day
	FindPendingDueOn(ctx context.Context, day time.Time) ([]RentPayment, error)

	// FindPendingDueBefore finds pending payments whose due date is before the given day
	FindPendingDueBefore(ctx context.Context, day time.Time) ([]RentPayment, error)

	// FindOverdue finds payments in OVERDUE status
	FindOverdue(ctx context.Context) ([]RentPayment, error)

	// ExistsForLeaseAndDate reports whether a payment already exists for the
	// lease on the given payment date
	ExistsForLeaseAndDate(ctx context.Context, leaseID uuid.UUID, paymentDate time.Time) (bool, error)

	// SumPaidBetween sums settled payment amounts with processed date in [from, to)
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// Save creates or updates a rent payment
	Save(ctx context.Context, payment *RentPayment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *RentPayment) error

	// Delete removes a rent payment
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus counts payments in a given status
	CountByStatus(ctx context.Context, status PaymentStatus) (int64, error)
}
