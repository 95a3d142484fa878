package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService provides administrative user management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// UserListFilter carries list filtering and pagination options
type UserListFilter struct {
	Role     string `form:"role"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// UpdateProfileRequest carries the mutable profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// ListUsers returns users matching the filter. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *identity.User, filter UserListFilter) ([]UserResponse, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, shared.NewDomainError("FORBIDDEN", "Only admins can list users")
	}

	domainFilter := identity.UserFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize},
	}
	if filter.Role != "" {
		role := identity.UserRole(filter.Role)
		if !role.IsValid() {
			return nil, 0, shared.NewValidationError("role", "unknown role")
		}
		domainFilter.Role = &role
	}
	if filter.Status != "" {
		status := identity.UserStatus(filter.Status)
		domainFilter.Status = &status
	}

	page, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toUserResponse(&page.Items[i]))
	}
	return responses, page.Total, nil
}

// GetUser returns a single user. Admins can view anyone; others only themselves.
func (s *UserService) GetUser(ctx context.Context, actor *identity.User, id uuid.UUID) (*UserResponse, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, shared.NewDomainError("FORBIDDEN", "You can only view your own account")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// UpdateProfile updates the actor's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, actor *identity.User, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	firstName := user.FirstName
	lastName := user.LastName
	if req.FirstName != nil {
		firstName = *req.FirstName
	}
	if req.LastName != nil {
		lastName = *req.LastName
	}
	user.SetName(firstName, lastName)
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// DeactivateUser disables an account. Admin only; admins cannot deactivate
// themselves.
func (s *UserService) DeactivateUser(ctx context.Context, actor *identity.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return shared.NewDomainError("FORBIDDEN", "Only admins can deactivate users")
	}
	if actor.ID == id {
		return shared.NewDomainError("INVALID_OPERATION", "Cannot deactivate your own account")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := user.Deactivate(); err != nil {
		return err
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}

	s.logger.Info("User deactivated",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}
