package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	portfolioapp "github.com/rentfolio/backend/internal/application/portfolio"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// DashboardHandler exposes portfolio-wide occupancy and income aggregates
type DashboardHandler struct {
	BaseHandler
	metricsService *portfolioapp.MetricsService
	authMW         gin.HandlerFunc
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(metricsService *portfolioapp.MetricsService, authMW gin.HandlerFunc) *DashboardHandler {
	return &DashboardHandler{
		metricsService: metricsService,
		authMW:         authMW,
	}
}

// RegisterRoutes registers dashboard routes. Tenants have no portfolio, so
// the dashboard is staff-only.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	dashboard.Use(h.authMW)
	dashboard.Use(middleware.RequireRole(
		identity.UserRoleAdmin,
		identity.UserRoleOwner,
		identity.UserRoleManager,
	))
	{
		dashboard.GET("/summary", h.Summary)
		dashboard.GET("/occupancy", h.Occupancy)
	}
}

// scope returns the owner filter for the actor: owners see only their own
// properties, admins and managers see the whole portfolio
func (h *DashboardHandler) scope(c *gin.Context) *uuid.UUID {
	actor := middleware.CurrentUser(c)
	if actor != nil && actor.Role == identity.UserRoleOwner {
		return &actor.ID
	}
	return nil
}

// Summary returns the cached dashboard summary
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.metricsService.Summary(c.Request.Context(), h.scope(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Occupancy returns the current occupancy rate as a percentage
func (h *DashboardHandler) Occupancy(c *gin.Context) {
	rate, err := h.metricsService.OccupancyRate(c.Request.Context(), h.scope(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"occupancy_rate": rate})
}
