package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/schoolerp/backend/internal/application/billing"
)

// CarryForwardHandler serves term-boundary carry-forward endpoints
type CarryForwardHandler struct {
	BaseHandler
	carryForwardService *appbilling.CarryForwardService
}

// NewCarryForwardHandler creates a new CarryForwardHandler
func NewCarryForwardHandler(carryForwardService *appbilling.CarryForwardService) *CarryForwardHandler {
	return &CarryForwardHandler{carryForwardService: carryForwardService}
}

// RegisterRoutes registers the carry-forward routes on the API group
func (h *CarryForwardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carryForwards := rg.Group("/carry-forwards")
	{
		carryForwards.POST("", h.Run)
		carryForwards.POST("/reverse", h.Reverse)
	}

	rg.GET("/terms/:id/outstanding", h.Outstanding)
}

// Outstanding handles GET /terms/:id/outstanding
func (h *CarryForwardHandler) Outstanding(c *gin.Context) {
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

	outstanding, err := h.carryForwardService.CalculateOutstanding(c.Request.Context(), tenantID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outstanding)
}

// CarryForwardRequest is the request body for running a carry-forward
type CarryForwardRequest struct {
	FromTermID string `json:"from_term_id" binding:"required,uuid"`
	ToTermID   string `json:"to_term_id" binding:"required,uuid"`
}

// Run handles POST /carry-forwards
func (h *CarryForwardHandler) Run(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CarryForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	fromTermID, err := uuid.Parse(req.FromTermID)
	if err != nil {
		h.BadRequest(c, "Invalid from term ID format")
		return
	}
	toTermID, err := uuid.Parse(req.ToTermID)
	if err != nil {
		h.BadRequest(c, "Invalid to term ID format")
		return
	}

	summary, err := h.carryForwardService.CarryForward(c.Request.Context(), tenantID, fromTermID, toTermID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ReverseCarryForwardRequest is the request body for reversing a
// carry-forward run, optionally scoped to one student
type ReverseCarryForwardRequest struct {
	FromTermID string  `json:"from_term_id" binding:"required,uuid"`
	ToTermID   string  `json:"to_term_id" binding:"required,uuid"`
	StudentID  *string `json:"student_id" binding:"omitempty,uuid"`
}

// Reverse handles POST /carry-forwards/reverse
func (h *CarryForwardHandler) Reverse(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ReverseCarryForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	fromTermID, err := uuid.Parse(req.FromTermID)
	if err != nil {
		h.BadRequest(c, "Invalid from term ID format")
		return
	}
	toTermID, err := uuid.Parse(req.ToTermID)
	if err != nil {
		h.BadRequest(c, "Invalid to term ID format")
		return
	}
	var studentID *uuid.UUID
	if req.StudentID != nil {
		id, err := uuid.Parse(*req.StudentID)
		if err != nil {
			h.BadRequest(c, "Invalid student ID format")
			return
		}
		studentID = &id
	}

	count, err := h.carryForwardService.Reverse(c.Request.Context(), tenantID, fromTermID, toTermID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"reversed_count": count})
}
