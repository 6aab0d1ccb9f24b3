package academic

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// TermFilter defines filtering options for term queries
type TermFilter struct {
	shared.Filter
	AcademicPeriodID *uuid.UUID // Filter by parent period
	IsCompleted      *bool      // Filter by completion flag
	IsCurrent        *bool      // Filter by current flag
}

// TermRepository defines the interface for term persistence
type TermRepository interface {
	// FindByIDForTenant finds a term by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Term, error)

	// FindAllForTenant finds all terms for a tenant in academic order
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TermFilter) ([]Term, error)

	// FindCurrent finds the tenant's current term
	FindCurrent(ctx context.Context, tenantID uuid.UUID) (*Term, error)

	// Save creates or updates a term
	Save(ctx context.Context, term *Term) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, term *Term) error
}

// AcademicPeriodRepository defines the interface for academic period persistence
type AcademicPeriodRepository interface {
	// FindByIDForTenant finds an academic period by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AcademicPeriod, error)

	// FindCurrent finds the tenant's current academic period
	FindCurrent(ctx context.Context, tenantID uuid.UUID) (*AcademicPeriod, error)

	// Save creates or updates an academic period
	Save(ctx context.Context, period *AcademicPeriod) error
}

// StudentRepository defines the interface for student persistence
type StudentRepository interface {
	// FindByIDForTenant finds a student by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Student, error)

	// FindByAdmissionNumber finds a student by admission number for a tenant
	FindByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string) (*Student, error)

	// FindAllForTenant finds all students for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Student, error)

	// Save creates or updates a student
	Save(ctx context.Context, student *Student) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, student *Student) error
}

// AcademicRecordFilter defines filtering options for academic record queries
type AcademicRecordFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	TermID    *uuid.UUID
	Status    *EnrollmentStatus
}

// AcademicRecordRepository defines the interface for academic record
// persistence. Records are create-only; later records supersede earlier
// ones.
type AcademicRecordRepository interface {
	// FindByStudentAndTerm finds the record for a (student, term) pair
	FindByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*StudentAcademicRecord, error)

	// FindByTerm finds all records in a term
	FindByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter AcademicRecordFilter) ([]StudentAcademicRecord, error)

	// FindByStudent finds all records for a student
	FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]StudentAcademicRecord, error)

	// Create persists a new record
	Create(ctx context.Context, record *StudentAcademicRecord) error
}
