package billing

import (
	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocationReason explains why part of a payment went into a term
type AllocationReason string

const (
	AllocationReasonTermFees             AllocationReason = "TERM_FEES"                // Fees of the collection term
	AllocationReasonHistoricalSettlement AllocationReason = "HISTORICAL_SETTLEMENT"    // Outstanding balance of an ended term
	AllocationReasonAdvancePayment       AllocationReason = "ADVANCE_PAYMENT"          // Prepayment of a future term
	AllocationReasonCarryForwardSettle   AllocationReason = "CARRY_FORWARD_SETTLEMENT" // Settles a carried-forward fee line
)

// IsValid checks if the reason is a valid AllocationReason
func (r AllocationReason) IsValid() bool {
	switch r {
	case AllocationReasonTermFees, AllocationReasonHistoricalSettlement,
		AllocationReasonAdvancePayment, AllocationReasonCarryForwardSettle:
		return true
	}
	return false
}

// String returns the string representation of AllocationReason
func (r AllocationReason) String() string {
	return string(r)
}

// PaymentAllocation records the assignment of part of a captured payment
// to a specific term. Rows are created together with the payment-summary
// update in one transaction and are never partially persisted.
type PaymentAllocation struct {
	shared.TenantAggregateRoot
	PaymentID        uuid.UUID        `json:"payment_id"`
	StudentID        uuid.UUID        `json:"student_id"`
	TermID           uuid.UUID        `json:"term_id"`
	AllocatedAmount  decimal.Decimal  `json:"allocated_amount"`
	Reason           AllocationReason `json:"reason"`
	IsAutoAllocation bool             `json:"is_auto_allocation"`
}

// NewPaymentAllocation creates a new allocation row
func NewPaymentAllocation(
	tenantID uuid.UUID,
	paymentID, studentID, termID uuid.UUID,
	amount valueobject.Money,
	reason AllocationReason,
	isAuto bool,
) (*PaymentAllocation, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if termID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TERM", "Term ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocated amount must be positive")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Allocation reason is not valid")
	}

	return &PaymentAllocation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentID:           paymentID,
		StudentID:           studentID,
		TermID:              termID,
		AllocatedAmount:     amount.Amount(),
		Reason:              reason,
		IsAutoAllocation:    isAuto,
	}, nil
}

// GetAllocatedAmountMoney returns the allocated amount as Money
func (a *PaymentAllocation) GetAllocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(a.AllocatedAmount)
}
