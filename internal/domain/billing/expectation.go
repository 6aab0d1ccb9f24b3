package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeBreakdownLine is one expected-fee line in a student's expectation
// breakdown, including optional lines shown for transparency
type FeeBreakdownLine struct {
	FeeID          uuid.UUID       `json:"fee_id"`
	Name           string          `json:"name"`
	Category       FeeCategory     `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	IsOptional     bool            `json:"is_optional"`
	Frequency      FeeFrequency    `json:"frequency"`
	IsCarryForward bool            `json:"is_carry_forward"`
	OriginalTermID *uuid.UUID      `json:"original_term_id,omitempty"`
}

// FeeExpectation is the resolved expectation for a (student, term) pair.
// TotalExpected sums mandatory lines only; optional lines appear in the
// breakdown but never in the total. Carry-forward lines count like any
// other mandatory line.
type FeeExpectation struct {
	TotalExpected      decimal.Decimal    `json:"total_expected"`
	CarryForwardAmount decimal.Decimal    `json:"carry_forward_amount"`
	Lines              []FeeBreakdownLine `json:"lines"`
}

// CurrentTermFees returns the expected amount net of carried balances
func (e FeeExpectation) CurrentTermFees() decimal.Decimal {
	return e.TotalExpected.Sub(e.CarryForwardAmount)
}

// MandatoryDueLines returns the mandatory lines that carry a due date,
// which are the only inputs to overdue calculation
func MandatoryDueLines(fees []*ExpectedFee, studentID, classID uuid.UUID, classScoped bool) []*ExpectedFee {
	lines := make([]*ExpectedFee, 0, len(fees))
	for _, f := range fees {
		if f.AppliesTo(studentID, classID, classScoped) && f.IsMandatory() && f.DueDate != nil {
			lines = append(lines, f)
		}
	}
	return lines
}

// ResolveExpectation computes what a student owes for a term from the
// term's active fee lines. classScoped is false when the student has no
// class assignment; class-restricted lines are then skipped.
func ResolveExpectation(fees []*ExpectedFee, studentID, classID uuid.UUID, classScoped bool) FeeExpectation {
	expectation := FeeExpectation{
		TotalExpected:      decimal.Zero,
		CarryForwardAmount: decimal.Zero,
		Lines:              make([]FeeBreakdownLine, 0, len(fees)),
	}

	for _, f := range fees {
		if !f.AppliesTo(studentID, classID, classScoped) {
			continue
		}

		expectation.Lines = append(expectation.Lines, FeeBreakdownLine{
			FeeID:          f.ID,
			Name:           f.Name,
			Category:       f.Category,
			Amount:         f.Amount,
			IsOptional:     f.IsOptional,
			Frequency:      f.Frequency,
			IsCarryForward: f.IsCarryForward,
			OriginalTermID: f.OriginalTermID,
		})

		if f.IsOptional {
			continue
		}
		expectation.TotalExpected = expectation.TotalExpected.Add(f.Amount)
		if f.IsCarryForward {
			expectation.CarryForwardAmount = expectation.CarryForwardAmount.Add(f.Amount)
		}
	}

	return expectation
}
