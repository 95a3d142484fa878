package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/rentfolio/backend/internal/application/identity"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// UserHandler exposes account administration endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
	authMW      gin.HandlerFunc
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService, authMW gin.HandlerFunc) *UserHandler {
	return &UserHandler{
		userService: userService,
		authMW:      authMW,
	}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(h.authMW)
	{
		users.GET("", h.List)
		users.PUT("/me", h.UpdateProfile)
		users.GET("/:id", h.Get)
		users.POST("/:id/deactivate", h.Deactivate)
	}
}

// List returns users matching the filter. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	var filter identityapp.UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, users, total, page, pageSize)
}

// Get returns a single user. Admins can read anyone; others only themselves.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	user, err := h.userService.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile updates the acting user's own profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req identityapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate disables another user's account. Admin only.
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.userService.DeactivateUser(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
