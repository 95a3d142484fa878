package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	leaseapp "github.com/rentfolio/backend/internal/application/leasing"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// LeaseHandler exposes lease lifecycle endpoints
type LeaseHandler struct {
	BaseHandler
	leaseService   *leaseapp.LeaseService
	paymentService *leaseapp.PaymentService
	authMW         gin.HandlerFunc
}

// NewLeaseHandler creates a new LeaseHandler
func NewLeaseHandler(leaseService *leaseapp.LeaseService, paymentService *leaseapp.PaymentService, authMW gin.HandlerFunc) *LeaseHandler {
	return &LeaseHandler{
		leaseService:   leaseService,
		paymentService: paymentService,
		authMW:         authMW,
	}
}

// RegisterRoutes registers lease routes
func (h *LeaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	leases := rg.Group("/leases")
	leases.Use(h.authMW)
	{
		leases.POST("", h.Create)
		leases.GET("", h.List)
		leases.GET("/expiring", h.ListExpiring)
		leases.GET("/:id", h.Get)
		leases.PUT("/:id", h.Update)
		leases.POST("/:id/renew", h.Renew)
		leases.POST("/:id/terminate", h.Terminate)
		leases.GET("/:id/payments", h.ListPayments)
	}
}

// Create records a new lease in DRAFT status
func (h *LeaseHandler) Create(c *gin.Context) {
	var req leaseapp.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	lease, err := h.leaseService.CreateLease(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lease)
}

// List returns leases visible to the actor
func (h *LeaseHandler) List(c *gin.Context) {
	var filter leaseapp.LeaseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	leases, total, err := h.leaseService.ListLeases(c.Request.Context(), actor, filter)
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
	h.SuccessWithMeta(c, leases, total, page, pageSize)
}

// ListExpiring returns leases ending within the given window (default 30 days)
func (h *LeaseHandler) ListExpiring(c *gin.Context) {
	withinDays := 30
	if raw := c.Query("within_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "within_days must be a non-negative integer")
			return
		}
		withinDays = parsed
	}

	actor := middleware.CurrentUser(c)
	leases, err := h.leaseService.ListExpiringSoon(c.Request.Context(), actor, withinDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, leases)
}

// Get returns a single lease
func (h *LeaseHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	lease, err := h.leaseService.GetLease(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

// Update modifies a lease, guarded by the version the caller read
func (h *LeaseHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req leaseapp.UpdateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	lease, err := h.leaseService.UpdateLease(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

// Renew extends the lease end date and forces it active
func (h *LeaseHandler) Renew(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req leaseapp.RenewLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	lease, err := h.leaseService.RenewLease(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

// Terminate moves a lease to its terminal status
func (h *LeaseHandler) Terminate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req leaseapp.TerminateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	lease, err := h.leaseService.TerminateLease(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lease)
}

// ListPayments returns all payments recorded against a lease
func (h *LeaseHandler) ListPayments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	payments, err := h.paymentService.ListByLease(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
