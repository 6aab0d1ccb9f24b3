package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/schoolerp/backend/internal/application/billing"
	"github.com/shopspring/decimal"
)

// CreditHandler serves credit ledger endpoints
type CreditHandler struct {
	BaseHandler
	creditService *appbilling.CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *appbilling.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// RegisterRoutes registers the credit ledger routes on the API group
func (h *CreditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credits := rg.Group("/credits")
	{
		credits.POST("", h.Bank)
		credits.POST("/consume", h.Consume)
		credits.POST("/:id/refund", h.Refund)
	}

	rg.GET("/students/:id/credit-balance", h.Balance)
}

// BankCreditRequest is the request body for banking surplus credit
type BankCreditRequest struct {
	StudentID       string          `json:"student_id" binding:"required,uuid"`
	TermID          string          `json:"term_id" binding:"required,uuid"`
	SourcePaymentID *string         `json:"source_payment_id" binding:"omitempty,uuid"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Remark          string          `json:"remark"`
}

// Bank handles POST /credits
func (h *CreditHandler) Bank(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req BankCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}
	termID, err := uuid.Parse(req.TermID)
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	appReq := appbilling.BankRequest{
		TenantID:  tenantID,
		StudentID: studentID,
		TermID:    termID,
		Amount:    req.Amount,
		Remark:    req.Remark,
	}
	if req.SourcePaymentID != nil {
		paymentID, err := uuid.Parse(*req.SourcePaymentID)
		if err != nil {
			h.BadRequest(c, "Invalid source payment ID format")
			return
		}
		appReq.SourcePaymentID = &paymentID
	}

	entry, err := h.creditService.Bank(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ConsumeCreditRequest is the request body for consuming banked credit
type ConsumeCreditRequest struct {
	StudentID string          `json:"student_id" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// Consume handles POST /credits/consume
func (h *CreditHandler) Consume(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ConsumeCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	result, err := h.creditService.Consume(c.Request.Context(), tenantID, studentID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Balance handles GET /students/:id/credit-balance
func (h *CreditHandler) Balance(c *gin.Context) {
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

	balance, err := h.creditService.Balance(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"student_id": studentID, "balance": balance})
}

// Refund handles POST /credits/:id/refund
func (h *CreditHandler) Refund(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	entryID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid credit entry ID format")
		return
	}

	amount, err := h.creditService.Refund(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"entry_id": entryID, "refunded_amount": amount})
}
