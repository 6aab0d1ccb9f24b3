package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a captured payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanAllocate returns true if allocations may be recorded in this status
func (s PaymentStatus) CanAllocate() bool {
	return s == PaymentStatusCompleted
}

// Payment is one cash-collection event. The term on the payment is the
// term of collection, not necessarily the term the money is applied to;
// application happens through PaymentAllocation rows. A completed payment
// is immutable except for its allocation summary and status corrections.
type Payment struct {
	shared.TenantAggregateRoot
	PaymentNumber    string          `json:"payment_number"`
	StudentID        uuid.UUID       `json:"student_id"`
	TermID           uuid.UUID       `json:"term_id"`
	Amount           decimal.Decimal `json:"amount"`
	Status           PaymentStatus   `json:"status"`
	PaymentDate      time.Time       `json:"payment_date"`
	Method           string          `json:"method"`
	Reference        string          `json:"reference"`
	TotalAllocated   decimal.Decimal `json:"total_allocated"`
	CreditedAmount   decimal.Decimal `json:"credited_amount"` // surplus banked to the credit ledger
	IsFullyAllocated bool            `json:"is_fully_allocated"`
	CompletedAt      *time.Time      `json:"completed_at"`
}

// NewPayment creates a new pending payment capture
func NewPayment(
	tenantID uuid.UUID,
	paymentNumber string,
	studentID, termID uuid.UUID,
	amount valueobject.Money,
	paymentDate time.Time,
	method string,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if termID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TERM", "Term ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       paymentNumber,
		StudentID:           studentID,
		TermID:              termID,
		Amount:              amount.Amount(),
		Status:              PaymentStatusPending,
		PaymentDate:         paymentDate,
		Method:              method,
		TotalAllocated:      decimal.Zero,
		CreditedAmount:      decimal.Zero,
	}, nil
}

// Complete marks the payment as completed, making it allocatable
func (p *Payment) Complete() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot complete payment in %s status", p.Status))
	}
	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentCompletedEvent(p))
	return nil
}

// Fail marks the payment as failed
func (p *Payment) Fail() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot fail payment in %s status", p.Status))
	}
	p.Status = PaymentStatusFailed
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Cancel cancels a payment that has no allocations yet
func (p *Payment) Cancel() error {
	if p.Status == PaymentStatusFailed || p.Status == PaymentStatusCancelled {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot cancel payment in %s status", p.Status))
	}
	if p.TotalAllocated.GreaterThan(decimal.Zero) || p.CreditedAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("STATE_CONFLICT", "Cannot cancel payment with existing allocations")
	}
	p.Status = PaymentStatusCancelled
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UnallocatedAmount returns the portion of the payment neither applied to
// any term nor banked as credit
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.TotalAllocated).Sub(p.CreditedAmount)
}

// RecordAllocation updates the payment's allocation summary after new
// allocation rows were created. Conservation invariant: allocations plus
// banked credit never exceed the captured amount.
func (p *Payment) RecordAllocation(amount decimal.Decimal) error {
	if !p.Status.CanAllocate() {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot allocate payment in %s status", p.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	newTotal := p.TotalAllocated.Add(amount)
	if newTotal.Add(p.CreditedAmount).GreaterThan(p.Amount) {
		return shared.NewDomainError("OVER_ALLOCATION",
			fmt.Sprintf("Allocating %s would exceed payment amount %s (already allocated %s, credited %s)",
				amount.String(), p.Amount.String(), p.TotalAllocated.String(), p.CreditedAmount.String()))
	}

	p.TotalAllocated = newTotal
	p.IsFullyAllocated = newTotal.Add(p.CreditedAmount).GreaterThanOrEqual(p.Amount)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentAllocatedEvent(p, amount))
	return nil
}

// RecordCredit updates the summary after part of the payment was banked
// to the credit ledger. The same conservation invariant applies.
func (p *Payment) RecordCredit(amount decimal.Decimal) error {
	if !p.Status.CanAllocate() {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot bank credit from payment in %s status", p.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	newCredited := p.CreditedAmount.Add(amount)
	if p.TotalAllocated.Add(newCredited).GreaterThan(p.Amount) {
		return shared.NewDomainError("OVER_ALLOCATION",
			fmt.Sprintf("Banking %s would exceed payment amount %s (already allocated %s, credited %s)",
				amount.String(), p.Amount.String(), p.TotalAllocated.String(), p.CreditedAmount.String()))
	}

	p.CreditedAmount = newCredited
	p.IsFullyAllocated = p.TotalAllocated.Add(newCredited).GreaterThanOrEqual(p.Amount)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// GetAmountMoney returns the captured amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(p.Amount)
}

// GetUnallocatedMoney returns the unallocated remainder as Money
func (p *Payment) GetUnallocatedMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(p.UnallocatedAmount())
}
