package handler

import (
	"github.com/gin-gonic/gin"
	leaseapp "github.com/rentfolio/backend/internal/application/leasing"
	"github.com/rentfolio/backend/internal/domain/identity"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
)

// PaymentHandler exposes rent payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *leaseapp.PaymentService
	authMW         gin.HandlerFunc
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *leaseapp.PaymentService, authMW gin.HandlerFunc) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		authMW:         authMW,
	}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.Use(h.authMW)
	{
		payments.POST("", h.Create)
		payments.GET("", h.List)
		payments.GET("/overdue", h.ListOverdue)
		payments.GET("/:id", h.Get)
		payments.POST("/:id/pay", h.MarkPaid)

		// Processor callbacks are relayed by an operator, not the processor
		// itself, so they stay behind admin auth.
		admin := payments.Group("")
		admin.Use(middleware.RequireRole(identity.UserRoleAdmin))
		{
			admin.POST("/:id/refund", h.Refund)
			admin.POST("/:id/fail", h.Fail)
		}
	}
}

// Create records a pending payment for a billing cycle
func (h *PaymentHandler) Create(c *gin.Context) {
	var req leaseapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	payment, err := h.paymentService.CreatePayment(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// List returns payments visible to the actor
func (h *PaymentHandler) List(c *gin.Context) {
	var filter leaseapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), actor, filter)
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
	h.SuccessWithMeta(c, payments, total, page, pageSize)
}

// ListOverdue returns outstanding overdue payments
func (h *PaymentHandler) ListOverdue(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	payments, err := h.paymentService.ListOverdue(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Get returns a single payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	payment, err := h.paymentService.GetPayment(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// MarkPaid settles a pending or overdue payment
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req leaseapp.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor := middleware.CurrentUser(c)
	payment, err := h.paymentService.MarkPaid(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
}

// Refund records a processor refund for a settled payment
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.paymentService.HandleRefund(c.Request.Context(), id, req.TransactionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type failureRequest struct {
	Reason string `json:"reason"`
}

// Fail records a processor charge failure for a pending payment
func (h *PaymentHandler) Fail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req failureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.paymentService.HandleFailure(c.Request.Context(), id, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
