package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/portfolio"
	"github.com/rentfolio/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*portfolio.Property, error) {
	var property portfolio.Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// FindAll finds properties matching the filter with pagination
func (r *GormPropertyRepository) FindAll(ctx context.Context, filter portfolio.PropertyFilter) (*shared.Paginated[portfolio.Property], error) {
	query := r.db.WithContext(ctx).Model(&portfolio.Property{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.City != nil {
		query = query.Where("city = ?", *filter.City)
	}
	if filter.PropertyType != nil {
		query = query.Where("property_type = ?", *filter.PropertyType)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR address_line1 ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	orderBy := ValidateSortField(filter.OrderBy, PropertySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var properties []portfolio.Property
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&properties).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(properties, total, page, pageSize)
	return &result, nil
}

// FindByOwner finds all properties owned by a user
func (r *GormPropertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]portfolio.Property, error) {
	var properties []portfolio.Property
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// ExistsForOwnerAddress reports whether the owner already registered a
// property at the same address and city
func (r *GormPropertyRepository) ExistsForOwnerAddress(ctx context.Context, ownerID uuid.UUID, addressLine1, city string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&portfolio.Property{}).
		Where("owner_id = ? AND address_line1 = ? AND city = ?", ownerID, addressLine1, city).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumTotalUnits sums unit counts, optionally narrowed to one owner's portfolio
func (r *GormPropertyRepository) SumTotalUnits(ctx context.Context, ownerID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&portfolio.Property{}).
		Select("COALESCE(SUM(total_units), 0)")
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	var sum int64
	if err := query.Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *portfolio.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// SaveWithLock saves a property with optimistic locking (version check)
func (r *GormPropertyRepository) SaveWithLock(ctx context.Context, property *portfolio.Property) error {
	result := r.db.WithContext(ctx).
		Model(property).
		Select("*").
		Where("id = ? AND version = ?", property.ID, property.Version-1).
		Updates(property)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a property
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&portfolio.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts all properties
func (r *GormPropertyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&portfolio.Property{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ portfolio.PropertyRepository = (*GormPropertyRepository)(nil)
