package academic

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// AcademicPeriod represents the parent grouping of terms (an academic year)
type AcademicPeriod struct {
	shared.TenantAggregateRoot
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsCurrent bool      `json:"is_current"`
}

// NewAcademicPeriod creates a new academic period
func NewAcademicPeriod(tenantID uuid.UUID, name string, startDate, endDate time.Time) (*AcademicPeriod, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Period name cannot be empty")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Period end date must be after start date")
	}

	return &AcademicPeriod{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		StartDate:           startDate,
		EndDate:             endDate,
	}, nil
}

// Term represents a schedulable academic sub-period within an academic period.
// Once referenced by payment allocations a term's identity and dates are
// frozen; only the completion flags may change.
type Term struct {
	shared.TenantAggregateRoot
	AcademicPeriodID uuid.UUID `json:"academic_period_id"`
	Name             string    `json:"name"`
	TermNumber       int       `json:"term_number"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	// PeriodStartDate is denormalized from the parent period so that terms
	// can be ordered without a join.
	PeriodStartDate time.Time  `json:"period_start_date"`
	IsCurrent       bool       `json:"is_current"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// NewTerm creates a new term within an academic period
func NewTerm(
	tenantID uuid.UUID,
	periodID uuid.UUID,
	name string,
	termNumber int,
	startDate, endDate, periodStartDate time.Time,
) (*Term, error) {
	if periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Academic period ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Term name cannot be empty")
	}
	if termNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Term number must be positive")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Term end date must be after start date")
	}

	return &Term{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AcademicPeriodID:    periodID,
		Name:                name,
		TermNumber:          termNumber,
		StartDate:           startDate,
		EndDate:             endDate,
		PeriodStartDate:     periodStartDate,
	}, nil
}

// Before reports whether this term sorts before the other in academic order.
// Ordering key: period start date, then term number, then term start date.
func (t *Term) Before(other *Term) bool {
	if !t.PeriodStartDate.Equal(other.PeriodStartDate) {
		return t.PeriodStartDate.Before(other.PeriodStartDate)
	}
	if t.TermNumber != other.TermNumber {
		return t.TermNumber < other.TermNumber
	}
	return t.StartDate.Before(other.StartDate)
}

// HasEnded reports whether the term is over at the given instant
func (t *Term) HasEnded(now time.Time) bool {
	return t.IsCompleted || t.EndDate.Before(now)
}

// Complete marks the term as completed. Completing an already-completed
// term is a state conflict.
func (t *Term) Complete() error {
	if t.IsCompleted {
		return shared.NewDomainError("STATE_CONFLICT", "Term is already completed")
	}

	now := time.Now()
	t.IsCompleted = true
	t.IsCurrent = false
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTermCompletedEvent(t))

	return nil
}

// MarkCurrent flags this term as the tenant's current term
func (t *Term) MarkCurrent() error {
	if t.IsCompleted {
		return shared.NewDomainError("STATE_CONFLICT", "A completed term cannot become current")
	}
	t.IsCurrent = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// SortTerms sorts terms in place in academic order
func SortTerms(terms []Term) {
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].Before(&terms[j])
	})
}
