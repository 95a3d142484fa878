package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user, err := NewUser("Owner@Example.COM", "s3cretpass", UserRoleOwner)
		require.NoError(t, err)

		assert.Equal(t, "owner@example.com", user.Email, "email is normalized")
		assert.Equal(t, UserStatusActive, user.Status)
		assert.NotEqual(t, "s3cretpass", user.PasswordHash)
		assert.True(t, user.CheckPassword("s3cretpass"))
		assert.False(t, user.CheckPassword("wrong"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "UserRegistered", events[0].EventType())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "s3cretpass", UserRoleOwner)
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("owner@example.com", "short", UserRoleOwner)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("owner@example.com", "s3cretpass", UserRole("SUPERUSER"))
		assert.Error(t, err)
	})
}

func TestUserChangePassword(t *testing.T) {
	user, err := NewUser("owner@example.com", "s3cretpass", UserRoleOwner)
	require.NoError(t, err)

	require.NoError(t, user.ChangePassword("newpassword"))
	assert.True(t, user.CheckPassword("newpassword"))
	assert.False(t, user.CheckPassword("s3cretpass"))

	assert.Error(t, user.ChangePassword("short"))
}

func TestUserDeactivate(t *testing.T) {
	user, err := NewUser("owner@example.com", "s3cretpass", UserRoleOwner)
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.IsActive())
	assert.Error(t, user.Deactivate())
}

func TestUserFullName(t *testing.T) {
	user, err := NewUser("owner@example.com", "s3cretpass", UserRoleOwner)
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", user.FullName(), "falls back to email")
	user.SetName("Dana", "Whitfield")
	assert.Equal(t, "Dana Whitfield", user.FullName())
}

func TestUserIsAdmin(t *testing.T) {
	admin, err := NewUser("admin@example.com", "s3cretpass", UserRoleAdmin)
	require.NoError(t, err)
	owner, err := NewUser("owner@example.com", "s3cretpass", UserRoleOwner)
	require.NoError(t, err)

	assert.True(t, admin.IsAdmin())
	assert.False(t, owner.IsAdmin())
}
