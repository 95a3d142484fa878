package handler

import (
	"github.com/gin-gonic/gin"
	portfolioapp "github.com/rentfolio/backend/internal/application/portfolio"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// PropertyHandler exposes property portfolio endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *portfolioapp.PropertyService
	metricsService  *portfolioapp.MetricsService
	authMW          gin.HandlerFunc
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *portfolioapp.PropertyService, metricsService *portfolioapp.MetricsService, authMW gin.HandlerFunc) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		metricsService:  metricsService,
		authMW:          authMW,
	}
}

// RegisterRoutes registers property routes
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	properties.Use(h.authMW)
	{
		properties.POST("", h.Create)
		properties.GET("", h.List)
		properties.GET("/:id", h.Get)
		properties.GET("/:id/metrics", h.Metrics)
		properties.PUT("/:id", h.Update)
		properties.DELETE("/:id", h.Delete)
	}
}

// Create adds a property to the actor's portfolio
func (h *PropertyHandler) Create(c *gin.Context) {
	var req portfolioapp.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	property, err := h.propertyService.CreateProperty(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, property)
}

// List returns properties visible to the actor
func (h *PropertyHandler) List(c *gin.Context) {
	var filter portfolioapp.PropertyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	properties, total, err := h.propertyService.ListProperties(c.Request.Context(), actor, filter)
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
	h.SuccessWithMeta(c, properties, total, page, pageSize)
}

// Get returns a single property
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	property, err := h.propertyService.GetProperty(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, property)
}

// Metrics returns occupancy and income figures for a single property. The
// property lookup goes through the service so view authorization applies.
func (h *PropertyHandler) Metrics(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if _, err := h.propertyService.GetProperty(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	metrics, err := h.metricsService.ForProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, metrics)
}

// Update modifies a property, guarded by the version the caller read
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req portfolioapp.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	property, err := h.propertyService.UpdateProperty(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, property)
}

// Delete removes a property without active leases
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.propertyService.DeleteProperty(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
