package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testUser(role identity.UserRole) *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             "user@example.com",
		Role:              role,
		Status:            identity.UserStatusActive,
	}
}

func TestUserServiceListUsers(t *testing.T) {
	t.Run("admin lists users", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zap.NewNop())

		repo.On("FindAll", mock.Anything, mock.AnythingOfType("identity.UserFilter")).
			Return(&shared.Paginated[identity.User]{
				Items: []identity.User{*testUser(identity.UserRoleOwner)},
				Total: 1,
			}, nil)

		users, total, err := svc.ListUsers(context.Background(), testUser(identity.UserRoleAdmin), UserListFilter{})
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), zap.NewNop())

		_, _, err := svc.ListUsers(context.Background(), testUser(identity.UserRoleOwner), UserListFilter{})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "FORBIDDEN", derr.Code)
	})

	t.Run("unknown role filter rejected", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), zap.NewNop())

		_, _, err := svc.ListUsers(context.Background(), testUser(identity.UserRoleAdmin), UserListFilter{Role: "WIZARD"})
		assert.Error(t, err)
	})
}

func TestUserServiceGetUser(t *testing.T) {
	t.Run("user views own account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zap.NewNop())
		user := testUser(identity.UserRoleTenant)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		resp, err := svc.GetUser(context.Background(), user, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.ID)
	})

	t.Run("viewing someone else requires admin", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), zap.NewNop())

		_, err := svc.GetUser(context.Background(), testUser(identity.UserRoleTenant), uuid.New())
		assert.Error(t, err)
	})
}

func TestUserServiceUpdateProfile(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, zap.NewNop())
	user := testUser(identity.UserRoleOwner)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("SaveWithLock", mock.Anything, user).Return(nil)

	first := "Dana"
	phone := "+1-555-0101"
	resp, err := svc.UpdateProfile(context.Background(), user, UpdateProfileRequest{
		FirstName: &first,
		Phone:     &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana", resp.FirstName)
	assert.Equal(t, "+1-555-0101", resp.Phone)
}

func TestUserServiceDeactivateUser(t *testing.T) {
	t.Run("admin deactivates another user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, zap.NewNop())
		target := testUser(identity.UserRoleTenant)

		repo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
		repo.On("SaveWithLock", mock.Anything, target).Return(nil)

		err := svc.DeactivateUser(context.Background(), testUser(identity.UserRoleAdmin), target.ID)
		require.NoError(t, err)
		assert.Equal(t, identity.UserStatusDeactivated, target.Status)
	})

	t.Run("admin cannot deactivate self", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), zap.NewNop())
		admin := testUser(identity.UserRoleAdmin)

		err := svc.DeactivateUser(context.Background(), admin, admin.ID)
		assert.Error(t, err)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), zap.NewNop())

		err := svc.DeactivateUser(context.Background(), testUser(identity.UserRoleOwner), uuid.New())
		assert.Error(t, err)
	})
}
