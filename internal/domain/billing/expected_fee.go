package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FeeCategory classifies an expected fee line
type FeeCategory string

const (
	FeeCategoryTuition      FeeCategory = "TUITION"
	FeeCategoryBoarding     FeeCategory = "BOARDING"
	FeeCategoryActivity     FeeCategory = "ACTIVITY"
	FeeCategoryDevelopment  FeeCategory = "DEVELOPMENT"
	FeeCategoryOther        FeeCategory = "OTHER"
	FeeCategoryCarryForward FeeCategory = "CARRY_FORWARD" // System-generated balance moved from an earlier term
)

// IsValid checks if the category is a valid FeeCategory
func (c FeeCategory) IsValid() bool {
	switch c {
	case FeeCategoryTuition, FeeCategoryBoarding, FeeCategoryActivity,
		FeeCategoryDevelopment, FeeCategoryOther, FeeCategoryCarryForward:
		return true
	}
	return false
}

// String returns the string representation of FeeCategory
func (c FeeCategory) String() string {
	return string(c)
}

// FeeFrequency describes how often a fee line recurs
type FeeFrequency string

const (
	FeeFrequencyOnce    FeeFrequency = "ONCE"
	FeeFrequencyPerTerm FeeFrequency = "PER_TERM"
	FeeFrequencyMonthly FeeFrequency = "MONTHLY"
)

// IsValid checks if the frequency is valid
func (f FeeFrequency) IsValid() bool {
	switch f {
	case FeeFrequencyOnce, FeeFrequencyPerTerm, FeeFrequencyMonthly:
		return true
	}
	return false
}

// ExpectedFee is a billable line item scoped to a term and optionally to a
// class. Mandatory lines (IsOptional=false) sum to the term's expected
// amount. Carry-forward lines are ordinary mandatory lines tagged with
// their term of origin.
type ExpectedFee struct {
	shared.TenantAggregateRoot
	TermID         uuid.UUID       `json:"term_id"`
	ClassID        *uuid.UUID      `json:"class_id"`   // nil = applies to every class
	StudentID      *uuid.UUID      `json:"student_id"` // set only for per-student lines (carry-forward)
	Name           string          `json:"name"`
	Category       FeeCategory     `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	IsOptional     bool            `json:"is_optional"`
	Frequency      FeeFrequency    `json:"frequency"`
	DueDate        *time.Time      `json:"due_date"`
	IsCarryForward bool            `json:"is_carry_forward"`
	OriginalTermID *uuid.UUID      `json:"original_term_id"` // term the balance was carried from
	Active         bool            `json:"active"`
}

// NewExpectedFee creates a new expected fee line
func NewExpectedFee(
	tenantID uuid.UUID,
	termID uuid.UUID,
	classID *uuid.UUID,
	name string,
	category FeeCategory,
	amount valueobject.Money,
	isOptional bool,
	frequency FeeFrequency,
	dueDate *time.Time,
) (*ExpectedFee, error) {
	if termID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TERM", "Term ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Fee name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Fee category is not valid")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", "Fee frequency is not valid")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fee amount must be positive")
	}
	if category == FeeCategoryCarryForward {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Carry-forward fees are created by the carry-forward service")
	}

	return &ExpectedFee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TermID:              termID,
		ClassID:             classID,
		Name:                name,
		Category:            category,
		Amount:              amount.Amount(),
		IsOptional:          isOptional,
		Frequency:           frequency,
		DueDate:             dueDate,
		Active:              true,
	}, nil
}

// NewCarryForwardFee creates the per-student expected fee that carries an
// outstanding balance from fromTermID into toTermID. Carry-forward lines
// are always mandatory and non-recurring.
func NewCarryForwardFee(
	tenantID uuid.UUID,
	studentID uuid.UUID,
	fromTermID, toTermID uuid.UUID,
	amount valueobject.Money,
	reason string,
) (*ExpectedFee, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if fromTermID == uuid.Nil || toTermID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TERM", "Term ID cannot be empty")
	}
	if fromTermID == toTermID {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Cannot carry a balance forward into its own term")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Carry-forward amount must be positive")
	}
	if reason == "" {
		reason = "Balance carried forward"
	}

	fee := &ExpectedFee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TermID:              toTermID,
		StudentID:           &studentID,
		Name:                reason,
		Category:            FeeCategoryCarryForward,
		Amount:              amount.Amount(),
		IsOptional:          false,
		Frequency:           FeeFrequencyOnce,
		IsCarryForward:      true,
		OriginalTermID:      &fromTermID,
		Active:              true,
	}

	fee.AddDomainEvent(NewCarryForwardFeeCreatedEvent(fee))

	return fee, nil
}

// AppliesTo reports whether this line applies to a student with the given
// class scope. Unscoped lines apply to everyone; class-scoped lines only
// to matching classes; per-student lines only to that student.
func (f *ExpectedFee) AppliesTo(studentID uuid.UUID, classID uuid.UUID, classScoped bool) bool {
	if !f.Active {
		return false
	}
	if f.StudentID != nil {
		return *f.StudentID == studentID
	}
	if f.ClassID == nil {
		return true
	}
	return classScoped && *f.ClassID == classID
}

// IsMandatory reports whether the line counts toward the expected total
func (f *ExpectedFee) IsMandatory() bool {
	return !f.IsOptional
}

// Deactivate retires the fee line from future expectation computations
func (f *ExpectedFee) Deactivate() {
	f.Active = false
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// GetAmountMoney returns the amount as Money
func (f *ExpectedFee) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUGX(f.Amount)
}
