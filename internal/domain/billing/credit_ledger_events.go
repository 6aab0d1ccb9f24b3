package billing

import (
	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditBankedEvent is raised when surplus cash is banked as reusable credit
type CreditBankedEvent struct {
	shared.BaseDomainEvent
	CreditID        uuid.UUID       `json:"credit_id"`
	StudentID       uuid.UUID       `json:"student_id"`
	TermID          uuid.UUID       `json:"term_id"`
	SourcePaymentID *uuid.UUID      `json:"source_payment_id"`
	Amount          decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *CreditBankedEvent) EventType() string {
	return "CreditBanked"
}

// NewCreditBankedEvent creates a new CreditBankedEvent
func NewCreditBankedEvent(entry *CreditLedgerEntry) *CreditBankedEvent {
	return &CreditBankedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditBanked", "CreditLedgerEntry", entry.ID, entry.TenantID),
		CreditID:        entry.ID,
		StudentID:       entry.StudentID,
		TermID:          entry.TermID,
		SourcePaymentID: entry.SourcePaymentID,
		Amount:          entry.Amount,
	}
}

// CreditAppliedEvent is raised when a credit entry is fully consumed
type CreditAppliedEvent struct {
	shared.BaseDomainEvent
	CreditID  uuid.UUID       `json:"credit_id"`
	StudentID uuid.UUID       `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *CreditAppliedEvent) EventType() string {
	return "CreditApplied"
}

// NewCreditAppliedEvent creates a new CreditAppliedEvent
func NewCreditAppliedEvent(entry *CreditLedgerEntry) *CreditAppliedEvent {
	return &CreditAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditApplied", "CreditLedgerEntry", entry.ID, entry.TenantID),
		CreditID:        entry.ID,
		StudentID:       entry.StudentID,
		Amount:          entry.Amount,
	}
}
