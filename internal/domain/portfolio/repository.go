package portfolio

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
)

// PropertyFilter defines filtering options for property queries
type PropertyFilter struct {
	shared.Filter
	OwnerID      *uuid.UUID    // Filter by owner
	City         *string       // Filter by city
	PropertyType *PropertyType // Filter by type
}

// PropertyRepository defines the interface for property persistence
type PropertyRepository interface {
	// FindByID finds a property by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// FindAll finds properties with filtering and pagination
	FindAll(ctx context.Context, filter PropertyFilter) (*shared.Paginated[Property], error)

	// FindByOwner finds all properties owned by a user
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Property, error)

	// ExistsForOwnerAddress reports whether the owner already registered a
	// property at the same address and city
	ExistsForOwnerAddress(ctx context.Context, ownerID uuid.UUID, addressLine1, city string) (bool, error)

	// SumTotalUnits sums unit counts across all properties; an optional owner
	// narrows the sum to one portfolio
	SumTotalUnits(ctx context.Context, ownerID *uuid.UUID) (int64, error)

	// Save creates or updates a property
	Save(ctx context.Context, property *Property) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, property *Property) error

	// Delete removes a property
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts all properties
	Count(ctx context.Context) (int64, error)
}
