package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, authentication and session management
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// RegisterRequest carries the fields for user registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role" binding:"required"`
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest carries the old and new passwords
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoginResponse bundles the token pair with the authenticated user
type LoginResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

func toUserResponse(user *identity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Phone:       user.Phone,
		Role:        user.Role.String(),
		Status:      string(user.Status),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	role := identity.UserRole(req.Role)
	if role == identity.UserRoleAdmin {
		// admins are provisioned out of band, never via self-registration
		return nil, shared.NewDomainError("FORBIDDEN", "Cannot self-register as admin")
	}

	user, err := identity.NewUser(req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}
	if req.FirstName != "" || req.LastName != "" {
		user.SetName(req.FirstName, req.LastName)
	}
	user.Phone = req.Phone

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, user.GetDomainEvents())
	user.ClearDomainEvents()

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", user.Role.String()))

	resp := toUserResponse(user)
	return &resp, nil
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Login attempt for unknown email", zap.String("email", req.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.IsActive() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.CheckPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// login still succeeds; the timestamp is best-effort
		s.logger.Error("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &LoginResponse{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  toUserResponse(user),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a fresh token pair. The
// user's role and status are re-resolved so revoked accounts cannot refresh.
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	if s.blacklist != nil {
		blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Token blacklist check failed", zap.Error(err))
		} else if blacklisted {
			return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token has been revoked")
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid token claims")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Account no longer exists")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// the old refresh token is single-use
	if s.blacklist != nil {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Error("Failed to blacklist rotated refresh token", zap.Error(err))
		}
	}

	return &LoginResponse{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  toUserResponse(user),
	}, nil
}

// Logout revokes all of the actor's outstanding tokens
func (s *AuthService) Logout(ctx context.Context, actor *identity.User) error {
	if s.blacklist == nil {
		return nil
	}
	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, actor.ID.String(), ttl); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}
	s.logger.Info("User logged out", zap.String("user_id", actor.ID.String()))
	return nil
}

// GetProfile returns the actor's own profile
func (s *AuthService) GetProfile(ctx context.Context, actor *identity.User) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ChangePassword verifies the current password and sets a new one. All
// existing sessions are revoked afterwards.
func (s *AuthService) ChangePassword(ctx context.Context, actor *identity.User, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}

	if err := user.ChangePassword(req.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}

	if s.blacklist != nil {
		ttl := s.jwtService.GetRefreshTokenExpiration()
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), ttl); err != nil {
			s.logger.Error("Failed to revoke sessions after password change", zap.Error(err))
		}
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
