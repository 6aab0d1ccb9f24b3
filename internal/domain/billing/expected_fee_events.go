package billing

import (
	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CarryForwardFeeCreatedEvent is raised when an outstanding balance is
// carried into a later term as a per-student fee line
type CarryForwardFeeCreatedEvent struct {
	shared.BaseDomainEvent
	FeeID      uuid.UUID       `json:"fee_id"`
	StudentID  uuid.UUID       `json:"student_id"`
	FromTermID uuid.UUID       `json:"from_term_id"`
	ToTermID   uuid.UUID       `json:"to_term_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// EventType returns the event type name
func (e *CarryForwardFeeCreatedEvent) EventType() string {
	return "CarryForwardFeeCreated"
}

// NewCarryForwardFeeCreatedEvent creates a new CarryForwardFeeCreatedEvent
func NewCarryForwardFeeCreatedEvent(fee *ExpectedFee) *CarryForwardFeeCreatedEvent {
	var studentID, fromTermID uuid.UUID
	if fee.StudentID != nil {
		studentID = *fee.StudentID
	}
	if fee.OriginalTermID != nil {
		fromTermID = *fee.OriginalTermID
	}
	return &CarryForwardFeeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CarryForwardFeeCreated", "ExpectedFee", fee.ID, fee.TenantID),
		FeeID:           fee.ID,
		StudentID:       studentID,
		FromTermID:      fromTermID,
		ToTermID:        fee.TermID,
		Amount:          fee.Amount,
		Reason:          fee.Name,
	}
}
