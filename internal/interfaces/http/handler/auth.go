package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/rentfolio/backend/internal/application/identity"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// AuthHandler exposes registration, session, and credential endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	authMW      gin.HandlerFunc
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService, authMW gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		authMW:      authMW,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/auth")
	{
		public.POST("/register", h.Register)
		public.POST("/login", h.Login)
		public.POST("/refresh", h.Refresh)
	}

	protected := rg.Group("/auth")
	protected.Use(h.authMW)
	{
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
		protected.POST("/change-password", h.ChangePassword)
	}
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Login exchanges credentials for a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh rotates a refresh token into a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout revokes every session of the acting user
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.authService.Logout(c.Request.Context(), actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the acting user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	profile, err := h.authService.GetProfile(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// ChangePassword verifies the current password, sets the new one, and
// revokes existing sessions
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req identityapp.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.authService.ChangePassword(c.Request.Context(), actor, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
