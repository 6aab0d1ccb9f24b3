package academic

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// TermCompletedEvent is raised when a term is marked completed
type TermCompletedEvent struct {
	shared.BaseDomainEvent
	TermID           uuid.UUID `json:"term_id"`
	AcademicPeriodID uuid.UUID `json:"academic_period_id"`
	TermNumber       int       `json:"term_number"`
	CompletedAt      time.Time `json:"completed_at"`
}

// EventType returns the event type name
func (e *TermCompletedEvent) EventType() string {
	return "TermCompleted"
}

// NewTermCompletedEvent creates a new TermCompletedEvent
func NewTermCompletedEvent(t *Term) *TermCompletedEvent {
	completedAt := time.Now()
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}
	return &TermCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("TermCompleted", "Term", t.ID, t.TenantID),
		TermID:           t.ID,
		AcademicPeriodID: t.AcademicPeriodID,
		TermNumber:       t.TermNumber,
		CompletedAt:      completedAt,
	}
}
