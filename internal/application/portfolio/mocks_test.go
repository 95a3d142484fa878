package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/portfolio"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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

// memorySummaryCache is a map-backed SummaryCache for tests
type memorySummaryCache struct {
	entries map[string]*DashboardSummary
}

func newMemorySummaryCache() *memorySummaryCache {
	return &memorySummaryCache{entries: make(map[string]*DashboardSummary)}
}

func (c *memorySummaryCache) Get(ctx context.Context, key string) (*DashboardSummary, error) {
	return c.entries[key], nil
}

func (c *memorySummaryCache) Set(ctx context.Context, key string, summary *DashboardSummary, ttl time.Duration) error {
	c.entries[key] = summary
	return nil
}
