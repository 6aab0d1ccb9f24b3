package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OverdueResult breaks down how much of a student's outstanding balance
// is past due as of a reference instant
type OverdueResult struct {
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	OverdueLines  int             `json:"overdue_lines"`
	EarliestDue   *time.Time      `json:"earliest_due,omitempty"`
}

// IsOverdue returns true if any positive amount is past due
func (r OverdueResult) IsOverdue() bool {
	return r.OverdueAmount.GreaterThan(decimal.Zero)
}

// CalculateOverdue walks a student's dated mandatory fee lines against
// the cumulative paid amount. Lines are covered greedily, earliest due
// date first; for lines whose due date has passed, the uncovered portion
// counts as overdue. Lines without a due date never become overdue and
// are dropped before the walk. The result is capped at total
// outstanding (expected - paid) so overdue can never exceed it.
func CalculateOverdue(lines []*ExpectedFee, totalExpected, paid decimal.Decimal, now time.Time) OverdueResult {
	result := OverdueResult{OverdueAmount: decimal.Zero}

	outstanding := totalExpected.Sub(paid)
	if outstanding.LessThanOrEqual(decimal.Zero) || len(lines) == 0 {
		return result
	}

	sorted := make([]*ExpectedFee, 0, len(lines))
	for _, line := range lines {
		if line.DueDate != nil {
			sorted = append(sorted, line)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(*sorted[j].DueDate)
	})

	remaining := paid
	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}

	overdue := decimal.Zero
	for _, line := range sorted {
		covered := decimal.Min(remaining, line.Amount)
		remaining = remaining.Sub(covered)
		uncovered := line.Amount.Sub(covered)

		if uncovered.GreaterThan(decimal.Zero) && line.DueDate.Before(now) {
			overdue = overdue.Add(uncovered)
			result.OverdueLines++
			if result.EarliestDue == nil {
				due := *line.DueDate
				result.EarliestDue = &due
			}
		}
	}

	if overdue.GreaterThan(outstanding) {
		overdue = outstanding
	}
	result.OverdueAmount = overdue

	return result
}
