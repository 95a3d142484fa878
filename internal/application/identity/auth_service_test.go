package identity

import (
	"context"
	"testing"
	"time"

	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/infrastructure/auth"
	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-32-chars-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "rentfolio-test",
	})
}

func newAuthService(repo *MockUserRepository, publisher *recordingPublisher) *AuthService {
	return NewAuthService(repo, newJWTService(), auth.NewInMemoryTokenBlacklist(), publisher, zap.NewNop())
}

func registeredUser(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("dana@example.com", password, identity.UserRoleOwner)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func TestAuthServiceRegister(t *testing.T) {
	req := RegisterRequest{
		Email:     "dana@example.com",
		Password:  "s3cret-pass",
		FirstName: "Dana",
		LastName:  "Whitfield",
		Role:      "OWNER",
	}

	t.Run("registers a new owner", func(t *testing.T) {
		repo := new(MockUserRepository)
		publisher := &recordingPublisher{}
		svc := newAuthService(repo, publisher)

		repo.On("ExistsByEmail", mock.Anything, "dana@example.com").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "dana@example.com", resp.Email)
		assert.Equal(t, "Dana Whitfield", resp.FullName)
		assert.Equal(t, "OWNER", resp.Role)
		assert.Equal(t, "ACTIVE", resp.Status)
		assert.Contains(t, publisher.typesPublished(), "UserRegistered")
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})

		repo.On("ExistsByEmail", mock.Anything, "dana@example.com").Return(true, nil)

		_, err := svc.Register(context.Background(), req)
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "ALREADY_EXISTS", derr.Code)
	})

	t.Run("cannot self-register as admin", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})

		repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)

		adminReq := req
		adminReq.Role = "ADMIN"
		_, err := svc.Register(context.Background(), adminReq)
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "FORBIDDEN", derr.Code)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})

		repo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)

		badReq := req
		badReq.Role = "SUPERUSER"
		_, err := svc.Register(context.Background(), badReq)
		assert.Error(t, err)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	t.Run("valid credentials yield a token pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")

		repo.On("FindByEmail", mock.Anything, "dana@example.com").Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		resp, err := svc.Login(context.Background(), LoginRequest{
			Email:    "dana@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")

		repo.On("FindByEmail", mock.Anything, "dana@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "dana@example.com",
			Password: "wrong-pass",
		})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CREDENTIALS", derr.Code)
	})

	t.Run("unknown email gets the same error as a bad password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})

		repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever1",
		})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CREDENTIALS", derr.Code)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")
		require.NoError(t, user.Deactivate())

		repo.On("FindByEmail", mock.Anything, "dana@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "dana@example.com",
			Password: "s3cret-pass",
		})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", derr.Code)
	})
}

func TestAuthServiceRefreshToken(t *testing.T) {
	login := func(t *testing.T, svc *AuthService, repo *MockUserRepository, user *identity.User) *LoginResponse {
		t.Helper()
		repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)
		resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "s3cret-pass"})
		require.NoError(t, err)
		return resp
	}

	t.Run("rotates the token pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")
		session := login(t, svc, repo, user)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		refreshed, err := svc.RefreshToken(context.Background(), RefreshRequest{RefreshToken: session.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)
	})

	t.Run("used refresh token is rejected the second time", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")
		session := login(t, svc, repo, user)

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.RefreshToken(context.Background(), RefreshRequest{RefreshToken: session.RefreshToken})
		require.NoError(t, err)

		_, err = svc.RefreshToken(context.Background(), RefreshRequest{RefreshToken: session.RefreshToken})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_TOKEN", derr.Code)
	})

	t.Run("deactivated account cannot refresh", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")
		session := login(t, svc, repo, user)

		require.NoError(t, user.Deactivate())
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.RefreshToken(context.Background(), RefreshRequest{RefreshToken: session.RefreshToken})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", derr.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		svc := newAuthService(new(MockUserRepository), &recordingPublisher{})

		_, err := svc.RefreshToken(context.Background(), RefreshRequest{RefreshToken: "garbage"})
		assert.Error(t, err)
	})
}

func TestAuthServiceChangePassword(t *testing.T) {
	t.Run("changes the password and revokes sessions", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("SaveWithLock", mock.Anything, user).Return(nil)

		err := svc.ChangePassword(context.Background(), user, ChangePasswordRequest{
			CurrentPassword: "s3cret-pass",
			NewPassword:     "n3w-secret-pass",
		})
		require.NoError(t, err)
		assert.True(t, user.CheckPassword("n3w-secret-pass"))
	})

	t.Run("wrong current password rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, &recordingPublisher{})
		user := registeredUser(t, "s3cret-pass")

		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		err := svc.ChangePassword(context.Background(), user, ChangePasswordRequest{
			CurrentPassword: "wrong-pass",
			NewPassword:     "n3w-secret-pass",
		})
		require.Error(t, err)
		derr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CREDENTIALS", derr.Code)
	})
}
