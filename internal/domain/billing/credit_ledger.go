package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreditStatus represents the status of a credit ledger entry
type CreditStatus string

const (
	CreditStatusActive   CreditStatus = "ACTIVE"   // Has consumable balance
	CreditStatusApplied  CreditStatus = "APPLIED"  // Fully consumed
	CreditStatusRefunded CreditStatus = "REFUNDED" // Remainder returned to the payer
)

// IsValid checks if the status is a valid CreditStatus
func (s CreditStatus) IsValid() bool {
	switch s {
	case CreditStatusActive, CreditStatusApplied, CreditStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of CreditStatus
func (s CreditStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the entry can no longer be consumed
func (s CreditStatus) IsTerminal() bool {
	return s == CreditStatusApplied || s == CreditStatusRefunded
}

// CreditLedgerEntry banks surplus cash that was collected but not assigned
// to any term. Credit is consumable at student scope irrespective of the
// originating term; the origin term is retained for audit only.
// Invariant: 0 <= RemainingAmount <= Amount, monotonically non-increasing.
type CreditLedgerEntry struct {
	shared.TenantAggregateRoot
	StudentID       uuid.UUID       `json:"student_id"`
	TermID          uuid.UUID       `json:"term_id"`           // term of origin
	SourcePaymentID *uuid.UUID      `json:"source_payment_id"` // nil for legacy or manual entries
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          CreditStatus    `json:"status"`
	Remark          string          `json:"remark"`
	AppliedAt       *time.Time      `json:"applied_at"`
	RefundedAt      *time.Time      `json:"refunded_at"`
}

// NewCreditLedgerEntry banks a surplus amount as reusable credit
func NewCreditLedgerEntry(
	tenantID uuid.UUID,
	studentID, termID uuid.UUID,
	sourcePaymentID *uuid.UUID,
	amount valueobject.Money,
	remark string,
) (*CreditLedgerEntry, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if termID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TERM", "Term ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	entry := &CreditLedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StudentID:           studentID,
		TermID:              termID,
		SourcePaymentID:     sourcePaymentID,
		Amount:              amount.Amount(),
		RemainingAmount:     amount.Amount(),
		Status:              CreditStatusActive,
		Remark:              remark,
	}

	entry.AddDomainEvent(NewCreditBankedEvent(entry))

	return entry, nil
}

// Consume decrements the remaining balance. When the balance reaches zero
// the entry transitions to applied.
func (e *CreditLedgerEntry) Consume(amount valueobject.Money) error {
	if e.Status.IsTerminal() {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot consume credit in %s status", e.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Consume amount must be positive")
	}
	if amount.Amount().GreaterThan(e.RemainingAmount) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT",
			fmt.Sprintf("Consume amount %s exceeds remaining credit %s",
				amount.Amount().String(), e.RemainingAmount.String()))
	}

	e.RemainingAmount = e.RemainingAmount.Sub(amount.Amount())
	now := time.Now()
	if e.RemainingAmount.IsZero() {
		e.Status = CreditStatusApplied
		e.AppliedAt = &now
		e.AddDomainEvent(NewCreditAppliedEvent(e))
	}
	e.UpdatedAt = now
	e.IncrementVersion()

	return nil
}

// Refund returns the remaining balance to the payer and closes the entry
func (e *CreditLedgerEntry) Refund() (decimal.Decimal, error) {
	if e.Status.IsTerminal() {
		return decimal.Zero, shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot refund credit in %s status", e.Status))
	}
	if e.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("STATE_CONFLICT", "No remaining credit to refund")
	}

	refunded := e.RemainingAmount
	now := time.Now()
	e.RemainingAmount = decimal.Zero
	e.Status = CreditStatusRefunded
	e.RefundedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	return refunded, nil
}

// IsActive returns true if the entry still has consumable balance
func (e *CreditLedgerEntry) IsActive() bool {
	return e.Status == CreditStatusActive
}

// GetRemainingAmountMoney returns the remaining balance as Money
func (e *CreditLedgerEntry) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(e.RemainingAmount)
}
