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
	"github.com/stretchr/testify/mock"
)

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindAll(ctx context.Context, filter leasing.LeaseFilter) (*shared.Paginated[leasing.Lease], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[leasing.Lease]), args.Error(1)
}

func (m *MockLeaseRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]leasing.Lease, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveByProperty(ctx context.Context, propertyID uuid.UUID, today time.Time) (*leasing.Lease, error) {
	args := m.Called(ctx, propertyID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByStatus(ctx context.Context, status leasing.LeaseStatus) ([]leasing.Lease, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindEndingOn(ctx context.Context, day time.Time) ([]leasing.Lease, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindEndingBetween(ctx context.Context, from, to time.Time, statuses []leasing.LeaseStatus) ([]leasing.Lease, error) {
	args := m.Called(ctx, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindCurrentlyActive(ctx context.Context, today time.Time) ([]leasing.Lease, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) ExistsForPropertyTenantStart(ctx context.Context, propertyID uuid.UUID, tenantID *uuid.UUID, startDate time.Time) (bool, error) {
	args := m.Called(ctx, propertyID, tenantID, startDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeaseRepository) CountByStatus(ctx context.Context, status leasing.LeaseStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockRentPaymentRepository struct {
	mock.Mock
}

func (m *MockRentPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.RentPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) FindAll(ctx context.Context, filter leasing.RentPaymentFilter) (*shared.Paginated[leasing.RentPayment], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[leasing.RentPayment]), args.Error(1)
}

func (m *MockRentPaymentRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]leasing.RentPayment, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) FindPendingDueOn(ctx context.Context, day time.Time) ([]leasing.RentPayment, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) FindPendingDueBefore(ctx context.Context, day time.Time) ([]leasing.RentPayment, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) FindOverdue(ctx context.Context) ([]leasing.RentPayment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.RentPayment), args.Error(1)
}

func (m *MockRentPaymentRepository) ExistsForLeaseAndDate(ctx context.Context, leaseID uuid.UUID, paymentDate time.Time) (bool, error) {
	args := m.Called(ctx, leaseID, paymentDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentPaymentRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRentPaymentRepository) Save(ctx context.Context, payment *leasing.RentPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRentPaymentRepository) SaveWithLock(ctx context.Context, payment *leasing.RentPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRentPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRentPaymentRepository) CountByStatus(ctx context.Context, status leasing.PaymentStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*portfolio.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portfolio.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindAll(ctx context.Context, filter portfolio.PropertyFilter) (*shared.Paginated[portfolio.Property], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[portfolio.Property]), args.Error(1)
}

func (m *MockPropertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]portfolio.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portfolio.Property), args.Error(1)
}

func (m *MockPropertyRepository) ExistsForOwnerAddress(ctx context.Context, ownerID uuid.UUID, addressLine1, city string) (bool, error) {
	args := m.Called(ctx, ownerID, addressLine1, city)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) SumTotalUnits(ctx context.Context, ownerID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, property *portfolio.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) SaveWithLock(ctx context.Context, property *portfolio.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) (*shared.Paginated[identity.User], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[identity.User]), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSweepRunRepository struct {
	mock.Mock
}

func (m *MockSweepRunRepository) HasRun(ctx context.Context, jobName string, runDate time.Time) (bool, error) {
	args := m.Called(ctx, jobName, runDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockSweepRunRepository) Record(ctx context.Context, run *leasing.SweepRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSweepRunRepository) FindRecent(ctx context.Context, jobName string, limit int) ([]leasing.SweepRun, error) {
	args := m.Called(ctx, jobName, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.SweepRun), args.Error(1)
}

func (m *MockSweepRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) typesPublished() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}
