package academic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// EligibilityWindow is the ordered list of terms a student's payments may
// legally be allocated into. When neither an enrollment term nor any
// academic history could be resolved the window is unbounded: every term
// is eligible and Unbounded is set so callers can surface a warning.
type EligibilityWindow struct {
	Terms            []Term
	EnrollmentTermID *uuid.UUID
	GraduationTermID *uuid.UUID
	Unbounded        bool
}

// Contains reports whether the given term is inside the window
func (w *EligibilityWindow) Contains(termID uuid.UUID) bool {
	for i := range w.Terms {
		if w.Terms[i].ID == termID {
			return true
		}
	}
	return false
}

// TermIDs returns the IDs of the eligible terms in academic order
func (w *EligibilityWindow) TermIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(w.Terms))
	for i := range w.Terms {
		ids[i] = w.Terms[i].ID
	}
	return ids
}

// TermEligibilityResolver computes the closed interval of terms bounded by
// a student's enrollment and graduation terms. The resolver encodes a
// business rule, not a UI hint: allocation paths must re-apply it
// server-side regardless of what a caller claims.
type TermEligibilityResolver struct {
	termRepo   TermRepository
	recordRepo AcademicRecordRepository
}

// NewTermEligibilityResolver creates a new TermEligibilityResolver
func NewTermEligibilityResolver(termRepo TermRepository, recordRepo AcademicRecordRepository) *TermEligibilityResolver {
	return &TermEligibilityResolver{
		termRepo:   termRepo,
		recordRepo: recordRepo,
	}
}

// Resolve computes the eligibility window for a student over the tenant's
// full term catalog.
func (r *TermEligibilityResolver) Resolve(ctx context.Context, tenantID uuid.UUID, student *Student) (*EligibilityWindow, error) {
	if student == nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student cannot be nil")
	}

	terms, err := r.termRepo.FindAllForTenant(ctx, tenantID, TermFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load term catalog: %w", err)
	}
	SortTerms(terms)

	enrollmentTermID := student.EnrollmentTermID
	if enrollmentTermID == nil {
		inferred, err := r.inferEnrollmentTerm(ctx, tenantID, student.ID, terms)
		if err != nil {
			return nil, err
		}
		enrollmentTermID = inferred
	}

	if enrollmentTermID == nil {
		// Degraded mode: no enrollment term could be resolved, every term
		// is eligible. Non-fatal, but the caller must log the Unbounded flag.
		return &EligibilityWindow{
			Terms:            terms,
			GraduationTermID: student.GraduationTermID,
			Unbounded:        true,
		}, nil
	}

	window := &EligibilityWindow{
		Terms:            make([]Term, 0, len(terms)),
		EnrollmentTermID: enrollmentTermID,
		GraduationTermID: student.GraduationTermID,
	}

	started := false
	for i := range terms {
		if terms[i].ID == *enrollmentTermID {
			started = true
		}
		if started {
			window.Terms = append(window.Terms, terms[i])
		}
		if student.GraduationTermID != nil && terms[i].ID == *student.GraduationTermID {
			break
		}
	}

	return window, nil
}

// inferEnrollmentTerm infers the enrollment term as the earliest term (in
// academic order) referenced by any academic record for the student.
// Returns nil when the student has no history at all.
func (r *TermEligibilityResolver) inferEnrollmentTerm(ctx context.Context, tenantID, studentID uuid.UUID, orderedTerms []Term) (*uuid.UUID, error) {
	records, err := r.recordRepo.FindByStudent(ctx, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load academic history: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	referenced := make(map[uuid.UUID]bool, len(records))
	for i := range records {
		referenced[records[i].TermID] = true
	}

	for i := range orderedTerms {
		if referenced[orderedTerms[i].ID] {
			id := orderedTerms[i].ID
			return &id, nil
		}
	}

	return nil, nil
}
