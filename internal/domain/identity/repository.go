package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
)

// UserFilter defines filtering options for user queries
type UserFilter struct {
	shared.Filter
	Role   *UserRole   // Filter by role
	Status *UserStatus // Filter by status
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email (case-insensitive)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll finds users with filtering and pagination
	FindAll(ctx context.Context, filter UserFilter) (*shared.Paginated[User], error)

	// ExistsByEmail reports whether a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, user *User) error

	// Delete removes a user
	Delete(ctx context.Context, id uuid.UUID) error
}
