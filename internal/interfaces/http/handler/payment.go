package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/schoolerp/backend/internal/application/billing"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// PaymentHandler serves payment capture, lifecycle, and allocation
// endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService    *appbilling.PaymentService
	allocationService *appbilling.AllocationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appbilling.PaymentService, allocationService *appbilling.AllocationService) *PaymentHandler {
	return &PaymentHandler{
		paymentService:    paymentService,
		allocationService: allocationService,
	}
}

// RegisterRoutes registers the payment routes on the API group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Capture)
		payments.GET("", h.List)
		payments.GET("/number/:number", h.GetByNumber)
		payments.GET("/:id", h.Get)
		payments.POST("/:id/complete", h.Complete)
		payments.POST("/:id/fail", h.Fail)
		payments.POST("/:id/cancel", h.Cancel)
		payments.POST("/:id/allocations", h.Allocate)
		payments.GET("/:id/allocations", h.ListAllocations)
		payments.GET("/:id/allocations/suggest", h.Suggest)
		payments.POST("/:id/allocations/auto", h.AutoAllocate)
	}
}

// CapturePaymentRequest is the request body for capturing a payment
type CapturePaymentRequest struct {
	StudentID    string          `json:"student_id" binding:"required,uuid"`
	TermID       *string         `json:"term_id" binding:"omitempty,uuid"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate  *string         `json:"payment_date"`
	Method       string          `json:"method" binding:"required"`
	Reference    string          `json:"reference"`
	AutoComplete bool            `json:"auto_complete"`
}

// Capture handles POST /payments
func (h *PaymentHandler) Capture(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	appReq := appbilling.CapturePaymentRequest{
		TenantID:     tenantID,
		StudentID:    studentID,
		Amount:       req.Amount,
		Method:       req.Method,
		Reference:    req.Reference,
		AutoComplete: req.AutoComplete,
	}
	if req.TermID != nil {
		termID, err := uuid.Parse(*req.TermID)
		if err != nil {
			h.BadRequest(c, "Invalid term ID format")
			return
		}
		appReq.TermID = termID
	}
	if req.PaymentDate != nil {
		paymentDate, err := parseDate(*req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid payment date format")
			return
		}
		appReq.PaymentDate = paymentDate
	}

	payment, err := h.paymentService.Capture(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.Get(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// GetByNumber handles GET /payments/number/:number
func (h *PaymentHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	payment, err := h.paymentService.GetByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := billing.PaymentFilter{Filter: listReq.ToFilter()}
	if v := c.Query("student_id"); v != "" {
		studentID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid student ID format")
			return
		}
		filter.StudentID = &studentID
	}
	if v := c.Query("term_id"); v != "" {
		termID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid term ID format")
			return
		}
		filter.TermID = &termID
	}
	if v := c.Query("status"); v != "" {
		status := billing.PaymentStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid payment status")
			return
		}
		filter.Status = &status
	}
	if v := c.Query("from_date"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			h.BadRequest(c, "Invalid from date format")
			return
		}
		filter.FromDate = &from
	}
	if v := c.Query("to_date"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			h.BadRequest(c, "Invalid to date format")
			return
		}
		filter.ToDate = &to
	}

	payments, err := h.paymentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Complete handles POST /payments/:id/complete
func (h *PaymentHandler) Complete(c *gin.Context) {
	h.transition(c, h.paymentService.Complete)
}

// Fail handles POST /payments/:id/fail
func (h *PaymentHandler) Fail(c *gin.Context) {
	h.transition(c, h.paymentService.Fail)
}

// Cancel handles POST /payments/:id/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.paymentService.Cancel)
}

func (h *PaymentHandler) transition(c *gin.Context, apply func(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := apply(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// AllocateItemRequest names one (term, amount, reason) split in an
// allocation request
type AllocateItemRequest struct {
	TermID string          `json:"term_id" binding:"required,uuid"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required,allocation_reason"`
}

// AllocateRequest is the request body for allocating a payment
type AllocateRequest struct {
	Items         []AllocateItemRequest `json:"items" binding:"required,min=1,dive"`
	BankRemainder bool                  `json:"bank_remainder"`
	Remark        string                `json:"remark"`
}

// Allocate handles POST /payments/:id/allocations
func (h *PaymentHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appReq := appbilling.AllocateRequest{
		TenantID:      tenantID,
		PaymentID:     paymentID,
		BankRemainder: req.BankRemainder,
		Remark:        req.Remark,
	}
	for _, item := range req.Items {
		termID, err := uuid.Parse(item.TermID)
		if err != nil {
			h.BadRequest(c, "Invalid term ID format in allocation items")
			return
		}
		appReq.Items = append(appReq.Items, appbilling.AllocationRequestItem{
			TermID: termID,
			Amount: item.Amount,
			Reason: billing.AllocationReason(item.Reason),
		})
	}

	result, err := h.allocationService.Allocate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListAllocations handles GET /payments/:id/allocations
func (h *PaymentHandler) ListAllocations(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	allocations, err := h.allocationService.ListByPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocations)
}

// Suggest handles GET /payments/:id/allocations/suggest
func (h *PaymentHandler) Suggest(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	plan, err := h.allocationService.Suggest(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// AutoAllocate handles POST /payments/:id/allocations/auto
func (h *PaymentHandler) AutoAllocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	paymentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	result, err := h.allocationService.AutoAllocate(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
