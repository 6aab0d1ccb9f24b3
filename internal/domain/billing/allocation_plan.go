package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TermOutstanding is a planning target: one eligible term with the
// student's outstanding balance in it plus the ordering key fields
type TermOutstanding struct {
	TermID          uuid.UUID       // term identifier
	TermName        string          // name for display purposes
	PeriodStartDate time.Time       // parent period start, primary ordering key
	TermNumber      int             // ordinal within the period
	StartDate       time.Time       // term start, ordering tiebreaker
	EndDate         time.Time       // used to decide whether the term has ended
	IsCompleted     bool            // a completed term counts as ended regardless of EndDate
	Outstanding     decimal.Decimal // expected minus paid, may be zero
}

// HasEnded mirrors the term aggregate's notion of ended: completed early
// or past its end date.
func (t TermOutstanding) HasEnded(now time.Time) bool {
	return t.IsCompleted || t.EndDate.Before(now)
}

// AllocationSuggestion is one proposed split of a payment into a term
type AllocationSuggestion struct {
	TermID          uuid.UUID        `json:"term_id"`
	TermName        string           `json:"term_name"`
	SuggestedAmount decimal.Decimal  `json:"suggested_amount"`
	Reason          AllocationReason `json:"reason"`
	Priority        int              `json:"priority"`
}

// AllocationPlan is the full priority-ordered proposal for an
// unallocated payment. RemainingAmount is what the plan could not place
// into any term; it stays available for advance payment or credit.
type AllocationPlan struct {
	PaymentID       uuid.UUID              `json:"payment_id"`
	Suggestions     []AllocationSuggestion `json:"suggestions"`
	TotalSuggested  decimal.Decimal        `json:"total_suggested"`
	RemainingAmount decimal.Decimal        `json:"remaining_amount"`
}

// BuildAllocationPlan proposes how to spend a payment's unallocated
// remainder. Ended terms with outstanding balances come first, oldest
// first, as historical settlements; then the collection term's own fees.
// Each suggestion takes min(remaining, term outstanding), consuming the
// remainder greedily in priority order.
func BuildAllocationPlan(payment *Payment, terms []TermOutstanding, now time.Time) (*AllocationPlan, error) {
	if payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if !payment.Status.CanAllocate() {
		return nil, shared.NewDomainError("STATE_CONFLICT", "Only completed payments can be planned")
	}

	plan := &AllocationPlan{
		PaymentID:      payment.ID,
		Suggestions:    make([]AllocationSuggestion, 0),
		TotalSuggested: decimal.Zero,
	}

	remaining := payment.UnallocatedAmount()
	if remaining.LessThanOrEqual(decimal.Zero) {
		plan.RemainingAmount = decimal.Zero
		return plan, nil
	}

	ended := make([]TermOutstanding, 0, len(terms))
	var collection *TermOutstanding
	for i, t := range terms {
		if t.TermID == payment.TermID {
			collection = &terms[i]
			continue
		}
		if t.HasEnded(now) && t.Outstanding.GreaterThan(decimal.Zero) {
			ended = append(ended, t)
		}
	}

	sort.Slice(ended, func(i, j int) bool {
		if !ended[i].PeriodStartDate.Equal(ended[j].PeriodStartDate) {
			return ended[i].PeriodStartDate.Before(ended[j].PeriodStartDate)
		}
		if ended[i].TermNumber != ended[j].TermNumber {
			return ended[i].TermNumber < ended[j].TermNumber
		}
		return ended[i].StartDate.Before(ended[j].StartDate)
	})

	priority := 1
	for _, t := range ended {
		if remaining.IsZero() {
			break
		}
		amount := decimal.Min(remaining, t.Outstanding)
		plan.Suggestions = append(plan.Suggestions, AllocationSuggestion{
			TermID:          t.TermID,
			TermName:        t.TermName,
			SuggestedAmount: amount,
			Reason:          AllocationReasonHistoricalSettlement,
			Priority:        priority,
		})
		plan.TotalSuggested = plan.TotalSuggested.Add(amount)
		remaining = remaining.Sub(amount)
		priority++
	}

	if collection != nil && !remaining.IsZero() && collection.Outstanding.GreaterThan(decimal.Zero) {
		amount := decimal.Min(remaining, collection.Outstanding)
		plan.Suggestions = append(plan.Suggestions, AllocationSuggestion{
			TermID:          collection.TermID,
			TermName:        collection.TermName,
			SuggestedAmount: amount,
			Reason:          AllocationReasonTermFees,
			Priority:        priority,
		})
		plan.TotalSuggested = plan.TotalSuggested.Add(amount)
		remaining = remaining.Sub(amount)
	}

	plan.RemainingAmount = remaining
	return plan, nil
}
