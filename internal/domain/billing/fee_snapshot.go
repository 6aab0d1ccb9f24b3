package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FeeStatus classifies a student's payment position for a term
type FeeStatus string

const (
	FeeStatusPaid     FeeStatus = "PAID"
	FeeStatusPartial  FeeStatus = "PARTIAL"
	FeeStatusUnpaid   FeeStatus = "UNPAID"
	FeeStatusOverpaid FeeStatus = "OVERPAID"
)

// IsValid checks if the status is a valid FeeStatus
func (s FeeStatus) IsValid() bool {
	switch s {
	case FeeStatusPaid, FeeStatusPartial, FeeStatusUnpaid, FeeStatusOverpaid:
		return true
	}
	return false
}

// String returns the string representation of FeeStatus
func (s FeeStatus) String() string {
	return string(s)
}

// DeriveFeeStatus classifies paid against expected. A student who owes
// nothing is paid regardless of history; surplus over the expectation
// means overpaid.
func DeriveFeeStatus(expected, paid decimal.Decimal) FeeStatus {
	switch {
	case paid.GreaterThan(expected):
		return FeeStatusOverpaid
	case paid.GreaterThanOrEqual(expected):
		return FeeStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return FeeStatusPartial
	default:
		return FeeStatusUnpaid
	}
}

// PaymentPercentage returns paid as a percentage of expected, rounded to
// two places. A zero expectation counts as fully paid.
func PaymentPercentage(expected, paid decimal.Decimal) decimal.Decimal {
	if expected.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(100)
	}
	return paid.Div(expected).Mul(decimal.NewFromInt(100)).Round(2)
}

// StudentFeeStatus is the composed per-(student, term) read model
type StudentFeeStatus struct {
	StudentID          uuid.UUID          `json:"student_id"`
	TermID             uuid.UUID          `json:"term_id"`
	ExpectedAmount     decimal.Decimal    `json:"expected_amount"`
	PaidAmount         decimal.Decimal    `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal    `json:"outstanding_amount"`
	OverdueAmount      decimal.Decimal    `json:"overdue_amount"`
	CarryForwardAmount decimal.Decimal    `json:"carry_forward_amount"`
	CurrentTermFees    decimal.Decimal    `json:"current_term_fees"`
	CreditBalance      decimal.Decimal    `json:"credit_balance"`
	PaymentPercentage  decimal.Decimal    `json:"payment_percentage"`
	Status             FeeStatus          `json:"status"`
	IsOverdue          bool               `json:"is_overdue"`
	FromSnapshot       bool               `json:"from_snapshot"`
	Breakdown          []FeeBreakdownLine `json:"breakdown,omitempty"`
}

// NewStudentFeeStatus composes the derived fields from the raw amounts
func NewStudentFeeStatus(
	studentID, termID uuid.UUID,
	expectation FeeExpectation,
	paid decimal.Decimal,
	overdue OverdueResult,
	creditBalance decimal.Decimal,
) StudentFeeStatus {
	outstanding := expectation.TotalExpected.Sub(paid)
	if outstanding.LessThan(decimal.Zero) {
		outstanding = decimal.Zero
	}
	return StudentFeeStatus{
		StudentID:          studentID,
		TermID:             termID,
		ExpectedAmount:     expectation.TotalExpected,
		PaidAmount:         paid,
		OutstandingAmount:  outstanding,
		OverdueAmount:      overdue.OverdueAmount,
		CarryForwardAmount: expectation.CarryForwardAmount,
		CurrentTermFees:    expectation.CurrentTermFees(),
		CreditBalance:      creditBalance,
		PaymentPercentage:  PaymentPercentage(expectation.TotalExpected, paid),
		Status:             DeriveFeeStatus(expectation.TotalExpected, paid),
		IsOverdue:          overdue.IsOverdue(),
		Breakdown:          expectation.Lines,
	}
}

// StudentFeeSnapshot is the immutable historical record written once a
// term closes, so that status queries on old terms do not re-derive from
// possibly archived source rows
type StudentFeeSnapshot struct {
	shared.TenantAggregateRoot
	StudentID          uuid.UUID       `json:"student_id"`
	TermID             uuid.UUID       `json:"term_id"`
	ExpectedAmount     decimal.Decimal `json:"expected_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	OverdueAmount      decimal.Decimal `json:"overdue_amount"`
	CarryForwardAmount decimal.Decimal `json:"carry_forward_amount"`
	Status             FeeStatus       `json:"status"`
	CapturedAt         time.Time       `json:"captured_at"`
}

// NewStudentFeeSnapshot freezes a live status into a historical snapshot
func NewStudentFeeSnapshot(tenantID uuid.UUID, status StudentFeeStatus) (*StudentFeeSnapshot, error) {
	if status.StudentID == uuid.Nil || status.TermID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Snapshot requires student and term")
	}
	return &StudentFeeSnapshot{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StudentID:           status.StudentID,
		TermID:              status.TermID,
		ExpectedAmount:      status.ExpectedAmount,
		PaidAmount:          status.PaidAmount,
		OutstandingAmount:   status.OutstandingAmount,
		OverdueAmount:       status.OverdueAmount,
		CarryForwardAmount:  status.CarryForwardAmount,
		Status:              status.Status,
		CapturedAt:          time.Now(),
	}, nil
}

// ToStatus rehydrates the snapshot as a read model for historical queries
func (s *StudentFeeSnapshot) ToStatus(creditBalance decimal.Decimal) StudentFeeStatus {
	return StudentFeeStatus{
		StudentID:          s.StudentID,
		TermID:             s.TermID,
		ExpectedAmount:     s.ExpectedAmount,
		PaidAmount:         s.PaidAmount,
		OutstandingAmount:  s.OutstandingAmount,
		OverdueAmount:      s.OverdueAmount,
		CarryForwardAmount: s.CarryForwardAmount,
		CurrentTermFees:    s.ExpectedAmount.Sub(s.CarryForwardAmount),
		CreditBalance:      creditBalance,
		PaymentPercentage:  PaymentPercentage(s.ExpectedAmount, s.PaidAmount),
		Status:             s.Status,
		IsOverdue:          s.OverdueAmount.GreaterThan(decimal.Zero),
		FromSnapshot:       true,
	}
}
