package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindByID finds a lease by its ID
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).First(&lease, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// FindAll finds leases matching the filter with pagination
func (r *GormLeaseRepository) FindAll(ctx context.Context, filter leasing.LeaseFilter) (*shared.Paginated[leasing.Lease], error) {
	query := r.db.WithContext(ctx).Model(&leasing.Lease{})

	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EndFrom != nil {
		query = query.Where("end_date >= ?", leasing.DateOnly(*filter.EndFrom))
	}
	if filter.EndTo != nil {
		query = query.Where("end_date <= ?", leasing.DateOnly(*filter.EndTo))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	orderBy := ValidateSortField(filter.OrderBy, LeaseSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var leases []leasing.Lease
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leases).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(leases, total, page, pageSize)
	return &result, nil
}

// FindByProperty finds all leases for a property, newest first
func (r *GormLeaseRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]leasing.Lease, error) {
	var leases []leasing.Lease
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("start_date DESC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindActiveByProperty finds the active lease covering the given day, if any
func (r *GormLeaseRepository) FindActiveByProperty(ctx context.Context, propertyID uuid.UUID, today time.Time) (*leasing.Lease, error) {
	day := leasing.DateOnly(today)
	var lease leasing.Lease
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			propertyID, leasing.LeaseStatusActive, day, day).
		First(&lease).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

// FindByStatus finds leases in a given status
func (r *GormLeaseRepository) FindByStatus(ctx context.Context, status leasing.LeaseStatus) ([]leasing.Lease, error) {
	var leases []leasing.Lease
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindEndingOn finds ACTIVE leases whose end date equals the given day.
// Only active leases receive expiry notices; drafts and pending signatures
// ending on the same day do not.
func (r *GormLeaseRepository) FindEndingOn(ctx context.Context, day time.Time) ([]leasing.Lease, error) {
	var leases []leasing.Lease
	if err := r.db.WithContext(ctx).
		Where("end_date = ? AND status = ?", leasing.DateOnly(day), leasing.LeaseStatusActive).
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindEndingBetween finds leases in one of the given statuses ending within
// [from, to]
func (r *GormLeaseRepository) FindEndingBetween(ctx context.Context, from, to time.Time, statuses []leasing.LeaseStatus) ([]leasing.Lease, error) {
	var leases []leasing.Lease
	if err := r.db.WithContext(ctx).
		Where("end_date >= ? AND end_date <= ? AND status IN ?",
			leasing.DateOnly(from), leasing.DateOnly(to), statuses).
		Order("end_date ASC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindCurrentlyActive finds ACTIVE leases covering the given day
func (r *GormLeaseRepository) FindCurrentlyActive(ctx context.Context, today time.Time) ([]leasing.Lease, error) {
	day := leasing.DateOnly(today)
	var leases []leasing.Lease
	if err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ? AND end_date >= ?", leasing.LeaseStatusActive, day, day).
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// ExistsForPropertyTenantStart reports whether a lease already exists with the
// same property, tenant, and start date
func (r *GormLeaseRepository) ExistsForPropertyTenantStart(ctx context.Context, propertyID uuid.UUID, tenantID *uuid.UUID, startDate time.Time) (bool, error) {
	query := r.db.WithContext(ctx).Model(&leasing.Lease{}).
		Where("property_id = ? AND start_date = ?", propertyID, leasing.DateOnly(startDate))
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a lease
func (r *GormLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	return r.db.WithContext(ctx).Save(lease).Error
}

// SaveWithLock saves a lease with optimistic locking (version check).
// Returns CONCURRENCY_CONFLICT if another transaction changed the row.
func (r *GormLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	result := r.db.WithContext(ctx).
		Model(lease).
		Select("*").
		Where("id = ? AND version = ?", lease.ID, lease.Version-1).
		Updates(lease)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a lease
func (r *GormLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&leasing.Lease{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus counts leases in a given status
func (r *GormLeaseRepository) CountByStatus(ctx context.Context, status leasing.LeaseStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&leasing.Lease{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// normalizePage clamps page and page size to sane values
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

var _ leasing.LeaseRepository = (*GormLeaseRepository)(nil)
