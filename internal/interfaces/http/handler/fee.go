package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/schoolerp/backend/internal/application/billing"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// FeeHandler serves fee schedule and fee status endpoints
type FeeHandler struct {
	BaseHandler
	feeScheduleService *appbilling.FeeScheduleService
	feeStatusService   *appbilling.FeeStatusService
}

// NewFeeHandler creates a new FeeHandler
func NewFeeHandler(feeScheduleService *appbilling.FeeScheduleService, feeStatusService *appbilling.FeeStatusService) *FeeHandler {
	return &FeeHandler{
		feeScheduleService: feeScheduleService,
		feeStatusService:   feeStatusService,
	}
}

// RegisterRoutes registers the fee schedule and fee status routes on the
// API group
func (h *FeeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fees := rg.Group("/fees")
	{
		fees.POST("", h.Create)
		fees.GET("", h.List)
		fees.GET("/:id", h.Get)
		fees.POST("/:id/deactivate", h.Deactivate)
	}

	rg.GET("/students/:id/fee-status", h.StudentStatus)
	rg.GET("/terms/:id/summary", h.TermSummary)
	rg.POST("/terms/:id/snapshots", h.WriteSnapshots)
}

// CreateFeeRequest is the request body for adding an expected-fee line
type CreateFeeRequest struct {
	TermID     string          `json:"term_id" binding:"required,uuid"`
	ClassID    *string         `json:"class_id" binding:"omitempty,uuid"`
	Name       string          `json:"name" binding:"required"`
	Category   string          `json:"category" binding:"required,fee_category"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	IsOptional bool            `json:"is_optional"`
	Frequency  string          `json:"frequency" binding:"required,fee_frequency"`
	DueDate    *string         `json:"due_date"`
}

// Create handles POST /fees
func (h *FeeHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	termID, err := uuid.Parse(req.TermID)
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	appReq := appbilling.CreateFeeRequest{
		TenantID:   tenantID,
		TermID:     termID,
		Name:       req.Name,
		Category:   billing.FeeCategory(req.Category),
		Amount:     req.Amount,
		IsOptional: req.IsOptional,
		Frequency:  billing.FeeFrequency(req.Frequency),
	}
	if req.ClassID != nil {
		classID, err := uuid.Parse(*req.ClassID)
		if err != nil {
			h.BadRequest(c, "Invalid class ID format")
			return
		}
		appReq.ClassID = &classID
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			h.BadRequest(c, "Invalid due date format")
			return
		}
		appReq.DueDate = &dueDate
	}

	fee, err := h.feeScheduleService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, fee)
}

// Get handles GET /fees/:id
func (h *FeeHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	feeID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid fee ID format")
		return
	}

	fee, err := h.feeScheduleService.Get(c.Request.Context(), tenantID, feeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fee)
}

// List handles GET /fees
func (h *FeeHandler) List(c *gin.Context) {
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

	filter := billing.ExpectedFeeFilter{Filter: listReq.ToFilter()}
	if v := c.Query("term_id"); v != "" {
		termID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid term ID format")
			return
		}
		filter.TermID = &termID
	}
	if v := c.Query("class_id"); v != "" {
		classID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid class ID format")
			return
		}
		filter.ClassID = &classID
	}
	if v := c.Query("category"); v != "" {
		category := billing.FeeCategory(v)
		if !category.IsValid() {
			h.BadRequest(c, "Invalid fee category")
			return
		}
		filter.Category = &category
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	fees, err := h.feeScheduleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fees)
}

// Deactivate handles POST /fees/:id/deactivate
func (h *FeeHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	feeID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid fee ID format")
		return
	}

	fee, err := h.feeScheduleService.Deactivate(c.Request.Context(), tenantID, feeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fee)
}

// StudentStatus handles GET /students/:id/fee-status
func (h *FeeHandler) StudentStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	studentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}
	termID, err := uuid.Parse(c.Query("term_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing term_id query parameter")
		return
	}

	status, err := h.feeStatusService.StudentStatus(c.Request.Context(), tenantID, studentID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// TermSummary handles GET /terms/:id/summary
func (h *FeeHandler) TermSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	termID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	summary, err := h.feeStatusService.Summary(c.Request.Context(), tenantID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// WriteSnapshots handles POST /terms/:id/snapshots
func (h *FeeHandler) WriteSnapshots(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	termID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	count, err := h.feeStatusService.WriteSnapshots(c.Request.Context(), tenantID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"snapshot_count": count})
}
