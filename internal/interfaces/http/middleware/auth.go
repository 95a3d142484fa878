package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/infrastructure/auth"
	"github.com/rentfolio/backend/internal/infrastructure/logger"
	"github.com/rentfolio/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	ClaimsKey      = "jwt_claims"
	CurrentUserKey = "current_user"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// AuthConfig holds auth middleware configuration. The user repository is
// consulted on every request so role or status changes take effect
// immediately instead of at token expiry.
type AuthConfig struct {
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	UserRepo   identity.UserRepository
	Logger     *zap.Logger
}

// Auth validates the bearer token, checks revocation, and loads the acting
// user into the request context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, dto.ErrCodeInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, tokenErrorCode(err), "Token validation failed")
			return
		}

		ctx := c.Request.Context()

		if cfg.Blacklist != nil {
			if revoked := checkRevocation(ctx, cfg, claims); revoked {
				abortUnauthorized(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
				return
			}
		}

		userID, err := claims.GetUserUUID()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeInvalidToken, "Invalid token subject")
			return
		}

		actor, err := cfg.UserRepo.FindByID(ctx, userID)
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Account no longer exists")
			return
		}
		if !actor.IsActive() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeAccountDeactivated, "Account is deactivated", GetRequestID(c)))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(CurrentUserKey, actor)

		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, actor.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole restricts a route to the given roles. Must run after Auth.
func RequireRole(roles ...identity.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentUser(c)
		if actor == nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient permissions", GetRequestID(c)))
	}
}

// CurrentUser returns the authenticated user, or nil outside Auth
func CurrentUser(c *gin.Context) *identity.User {
	if value, exists := c.Get(CurrentUserKey); exists {
		if user, ok := value.(*identity.User); ok {
			return user
		}
	}
	return nil
}

// GetClaims returns the validated token claims, or nil outside Auth
func GetClaims(c *gin.Context) *auth.Claims {
	if value, exists := c.Get(ClaimsKey); exists {
		if claims, ok := value.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func checkRevocation(ctx context.Context, cfg AuthConfig, claims *auth.Claims) bool {
	if claims.ID != "" {
		blacklisted, err := cfg.Blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Fail open for availability; revocation is best-effort
			logBlacklistError(cfg, claims, err)
		} else if blacklisted {
			return true
		}
	}

	if claims.UserID != "" {
		invalidated, err := cfg.Blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			logBlacklistError(cfg, claims, err)
		} else if invalidated {
			return true
		}
	}
	return false
}

func logBlacklistError(cfg AuthConfig, claims *auth.Claims, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Error("failed to check token revocation",
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
	}
}

func tokenErrorCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.ErrCodeTokenRevoked
	default:
		return dto.ErrCodeInvalidToken
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
