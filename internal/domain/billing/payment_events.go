package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentCompletedEvent is raised when a payment capture is confirmed
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	TermID        uuid.UUID       `json:"term_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// EventType returns the event type name
func (e *PaymentCompletedEvent) EventType() string {
	return "PaymentCompleted"
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	completedAt := time.Now()
	if p.CompletedAt != nil {
		completedAt = *p.CompletedAt
	}
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCompleted", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		StudentID:       p.StudentID,
		TermID:          p.TermID,
		Amount:          p.Amount,
		Method:          p.Method,
		CompletedAt:     completedAt,
	}
}

// PaymentAllocatedEvent is raised when part of a payment is applied to a term
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID        uuid.UUID       `json:"payment_id"`
	PaymentNumber    string          `json:"payment_number"`
	StudentID        uuid.UUID       `json:"student_id"`
	AllocationAmount decimal.Decimal `json:"allocation_amount"`
	TotalAllocated   decimal.Decimal `json:"total_allocated"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	IsFullyAllocated bool            `json:"is_fully_allocated"`
}

// EventType returns the event type name
func (e *PaymentAllocatedEvent) EventType() string {
	return "PaymentAllocated"
}

// NewPaymentAllocatedEvent creates a new PaymentAllocatedEvent
func NewPaymentAllocatedEvent(p *Payment, amount decimal.Decimal) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PaymentAllocated", "Payment", p.ID, p.TenantID),
		PaymentID:        p.ID,
		PaymentNumber:    p.PaymentNumber,
		StudentID:        p.StudentID,
		AllocationAmount: amount,
		TotalAllocated:   p.TotalAllocated,
		RemainingAmount:  p.UnallocatedAmount(),
		IsFullyAllocated: p.IsFullyAllocated,
	}
}
