package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRentPaymentRepository implements RentPaymentRepository using GORM
type GormRentPaymentRepository struct {
	db *gorm.DB
}

// NewGormRentPaymentRepository creates a new GormRentPaymentRepository
func NewGormRentPaymentRepository(db *gorm.DB) *GormRentPaymentRepository {
	return &GormRentPaymentRepository{db: db}
}

// FindByID finds a rent payment by its ID
func (r *GormRentPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.RentPayment, error) {
	var payment leasing.RentPayment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindAll finds payments matching the filter with pagination
func (r *GormRentPaymentRepository) FindAll(ctx context.Context, filter leasing.RentPaymentFilter) (*shared.Paginated[leasing.RentPayment], error) {
	query := r.db.WithContext(ctx).Model(&leasing.RentPayment{})

	if filter.LeaseID != nil {
		query = query.Where("lease_id = ?", *filter.LeaseID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", leasing.DateOnly(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", leasing.DateOnly(*filter.DueTo))
	}
	if filter.PaidFrom != nil {
		query = query.Where("processed_at >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		query = query.Where("processed_at < ?", *filter.PaidTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	orderBy := ValidateSortField(filter.OrderBy, RentPaymentSortFields, "payment_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var payments []leasing.RentPayment
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&payments).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(payments, total, page, pageSize)
	return &result, nil
}

// FindByLease finds all payments for a lease, newest payment date first
func (r *GormRentPaymentRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]leasing.RentPayment, error) {
	var payments []leasing.RentPayment
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindPendingDueOn finds pending payments due on the given day
func (r *GormRentPaymentRepository) FindPendingDueOn(ctx context.Context, day time.Time) ([]leasing.RentPayment, error) {
	var payments []leasing.RentPayment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date = ?", leasing.PaymentStatusPending, leasing.DateOnly(day)).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindPendingDueBefore finds pending payments whose due date is before the given day
func (r *GormRentPaymentRepository) FindPendingDueBefore(ctx context.Context, day time.Time) ([]leasing.RentPayment, error) {
	var payments []leasing.RentPayment
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", leasing.PaymentStatusPending, leasing.DateOnly(day)).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindOverdue finds payments in OVERDUE status, oldest due date first
func (r *GormRentPaymentRepository) FindOverdue(ctx context.Context) ([]leasing.RentPayment, error) {
	var payments []leasing.RentPayment
	if err := r.db.WithContext(ctx).
		Where("status = ?", leasing.PaymentStatusOverdue).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// ExistsForLeaseAndDate reports whether a payment already exists for the
// lease on the given payment date
func (r *GormRentPaymentRepository) ExistsForLeaseAndDate(ctx context.Context, leaseID uuid.UUID, paymentDate time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&leasing.RentPayment{}).
		Where("lease_id = ? AND payment_date = ?", leaseID, leasing.DateOnly(paymentDate)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumPaidBetween sums settled payment amounts with processed date in [from, to)
func (r *GormRentPaymentRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&leasing.RentPayment{}).
		Select("SUM(amount + late_fee)").
		Where("status = ? AND processed_at >= ? AND processed_at < ?", leasing.PaymentStatusPaid, from, to).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Save creates or updates a rent payment
func (r *GormRentPaymentRepository) Save(ctx context.Context, payment *leasing.RentPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SaveWithLock saves a payment with optimistic locking (version check)
func (r *GormRentPaymentRepository) SaveWithLock(ctx context.Context, payment *leasing.RentPayment) error {
	result := r.db.WithContext(ctx).
		Model(payment).
		Select("*").
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Updates(payment)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a rent payment
func (r *GormRentPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&leasing.RentPayment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus counts payments in a given status
func (r *GormRentPaymentRepository) CountByStatus(ctx context.Context, status leasing.PaymentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&leasing.RentPayment{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ leasing.RentPaymentRepository = (*GormRentPaymentRepository)(nil)
