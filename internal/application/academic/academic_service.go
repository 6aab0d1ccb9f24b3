package academic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AcademicService manages the academic calendar and the student roster:
// periods, terms, students and their per-term academic records. Fee
// computation reads this data but never writes it.
type AcademicService struct {
	periodRepo  academic.AcademicPeriodRepository
	termRepo    academic.TermRepository
	studentRepo academic.StudentRepository
	recordRepo  academic.AcademicRecordRepository
	logger      *zap.Logger
}

// NewAcademicService creates a new AcademicService
func NewAcademicService(
	periodRepo academic.AcademicPeriodRepository,
	termRepo academic.TermRepository,
	studentRepo academic.StudentRepository,
	recordRepo academic.AcademicRecordRepository,
	logger *zap.Logger,
) *AcademicService {
	return &AcademicService{
		periodRepo:  periodRepo,
		termRepo:    termRepo,
		studentRepo: studentRepo,
		recordRepo:  recordRepo,
		logger:      logger,
	}
}

// CreatePeriodRequest represents a request to create an academic period
type CreatePeriodRequest struct {
	TenantID  uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// CreatePeriod creates a new academic period (year)
func (s *AcademicService) CreatePeriod(ctx context.Context, req CreatePeriodRequest) (*academic.AcademicPeriod, error) {
	period, err := academic.NewAcademicPeriod(req.TenantID, req.Name, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to save period: %w", err)
	}
	s.logger.Info("academic period created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("name", req.Name),
	)
	return period, nil
}

// CreateTermRequest represents a request to create a term
type CreateTermRequest struct {
	TenantID         uuid.UUID
	AcademicPeriodID uuid.UUID
	Name             string
	TermNumber       int
	StartDate        time.Time
	EndDate          time.Time
}

// CreateTerm creates a term inside an existing academic period. The
// period's start date is denormalized onto the term as its primary
// ordering key.
func (s *AcademicService) CreateTerm(ctx context.Context, req CreateTermRequest) (*academic.Term, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "academic", "create_term")
	defer span.End()

	period, err := s.periodRepo.FindByIDForTenant(ctx, req.TenantID, req.AcademicPeriodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load period: %w", err)
	}
	if period == nil {
		err := shared.NewDomainError("PERIOD_NOT_FOUND", "Academic period not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	term, err := academic.NewTerm(
		req.TenantID, req.AcademicPeriodID, req.Name, req.TermNumber,
		req.StartDate, req.EndDate, period.StartDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.termRepo.Save(ctx, term); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save term: %w", err)
	}

	s.logger.Info("term created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("term_id", term.ID.String()),
		zap.String("name", req.Name),
		zap.Int("term_number", req.TermNumber),
	)
	return term, nil
}

// GetTerm returns a term by ID
func (s *AcademicService) GetTerm(ctx context.Context, tenantID, termID uuid.UUID) (*academic.Term, error) {
	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		return nil, shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
	}
	return term, nil
}

// ListTerms returns the tenant's terms in academic order
func (s *AcademicService) ListTerms(ctx context.Context, tenantID uuid.UUID, filter academic.TermFilter) ([]academic.Term, error) {
	terms, err := s.termRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	return terms, nil
}

// CurrentTerm returns the tenant's current term
func (s *AcademicService) CurrentTerm(ctx context.Context, tenantID uuid.UUID) (*academic.Term, error) {
	term, err := s.termRepo.FindCurrent(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current term: %w", err)
	}
	if term == nil {
		return nil, shared.NewDomainError("TERM_NOT_FOUND", "No current term is set")
	}
	return term, nil
}

// CompleteTerm closes a term. Re-completing an already completed term is
// a state conflict.
func (s *AcademicService) CompleteTerm(ctx context.Context, tenantID, termID uuid.UUID) (*academic.Term, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "academic", "complete_term")
	defer span.End()

	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := term.Complete(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.termRepo.SaveWithLock(ctx, term); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("term completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("term_id", termID.String()),
	)
	return term, nil
}

// MarkCurrentTerm switches the tenant's current term. The previous
// current term, if any, is unmarked first so the one-current-term
// constraint holds.
func (s *AcademicService) MarkCurrentTerm(ctx context.Context, tenantID, termID uuid.UUID) (*academic.Term, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "academic", "mark_current_term")
	defer span.End()

	term, err := s.termRepo.FindByIDForTenant(ctx, tenantID, termID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	previous, err := s.termRepo.FindCurrent(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load current term: %w", err)
	}
	if previous != nil && previous.ID != term.ID {
		previous.IsCurrent = false
		previous.IncrementVersion()
		if err := s.termRepo.SaveWithLock(ctx, previous); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := term.MarkCurrent(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.termRepo.SaveWithLock(ctx, term); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("current term changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("term_id", termID.String()),
	)
	return term, nil
}

// CreateStudentRequest represents a request to enroll a new student
type CreateStudentRequest struct {
	TenantID         uuid.UUID
	AdmissionNumber  string
	FirstName        string
	LastName         string
	ClassID          *uuid.UUID
	EnrollmentTermID *uuid.UUID
}

// CreateStudent registers a new student. Admission numbers are unique per
// tenant.
func (s *AcademicService) CreateStudent(ctx context.Context, req CreateStudentRequest) (*academic.Student, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "academic", "create_student")
	defer span.End()

	existing, err := s.studentRepo.FindByAdmissionNumber(ctx, req.TenantID, req.AdmissionNumber)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check admission number: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("STATE_CONFLICT", "Admission number is already in use")
		telemetry.RecordError(span, err)
		return nil, err
	}

	student, err := academic.NewStudent(req.TenantID, req.AdmissionNumber, req.FirstName, req.LastName)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.ClassID != nil {
		if err := student.AssignClass(*req.ClassID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.EnrollmentTermID != nil {
		if err := student.SetEnrollmentTerm(*req.EnrollmentTermID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.studentRepo.Save(ctx, student); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save student: %w", err)
	}

	s.logger.Info("student created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("student_id", student.ID.String()),
		zap.String("admission_number", req.AdmissionNumber),
	)
	return student, nil
}

// GetStudent returns a student by ID
func (s *AcademicService) GetStudent(ctx context.Context, tenantID, studentID uuid.UUID) (*academic.Student, error) {
	student, err := s.studentRepo.FindByIDForTenant(ctx, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		return nil, shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
	}
	return student, nil
}

// ListStudents returns the tenant's students
func (s *AcademicService) ListStudents(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]academic.Student, error) {
	students, err := s.studentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// UpdateEnrollmentRequest carries optional changes to a student's class
// and billing window. Nil fields are left untouched.
type UpdateEnrollmentRequest struct {
	TenantID         uuid.UUID
	StudentID        uuid.UUID
	ClassID          *uuid.UUID
	EnrollmentTermID *uuid.UUID
	GraduationTermID *uuid.UUID
}

// UpdateEnrollment adjusts a student's class assignment or eligibility
// window endpoints.
func (s *AcademicService) UpdateEnrollment(ctx context.Context, req UpdateEnrollmentRequest) (*academic.Student, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "academic", "update_enrollment")
	defer span.End()

	student, err := s.studentRepo.FindByIDForTenant(ctx, req.TenantID, req.StudentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		err := shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.ClassID != nil {
		if err := student.AssignClass(*req.ClassID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.EnrollmentTermID != nil {
		if err := student.SetEnrollmentTerm(*req.EnrollmentTermID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.GraduationTermID != nil {
		if err := student.SetGraduationTerm(*req.GraduationTermID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.studentRepo.SaveWithLock(ctx, student); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return student, nil
}

// RecordEnrollmentRequest represents a request to record a student's
// standing in a term
type RecordEnrollmentRequest struct {
	TenantID  uuid.UUID
	StudentID uuid.UUID
	TermID    uuid.UUID
	ClassID   *uuid.UUID
	Status    academic.EnrollmentStatus
}

// RecordEnrollment creates the immutable academic record for a (student,
// term) pair. A second record for the same pair is a state conflict.
func (s *AcademicService) RecordEnrollment(ctx context.Context, req RecordEnrollmentRequest) (*academic.StudentAcademicRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "academic", "record_enrollment")
	defer span.End()

	student, err := s.studentRepo.FindByIDForTenant(ctx, req.TenantID, req.StudentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		err := shared.NewDomainError("STUDENT_NOT_FOUND", "Student not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	term, err := s.termRepo.FindByIDForTenant(ctx, req.TenantID, req.TermID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	existing, err := s.recordRepo.FindByStudentAndTerm(ctx, req.TenantID, req.StudentID, req.TermID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check existing record: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("STATE_CONFLICT", "Student already has a record for this term")
		telemetry.RecordError(span, err)
		return nil, err
	}

	classID := req.ClassID
	if classID == nil {
		if id, scoped := student.ClassScope(); scoped {
			classID = &id
		}
	}

	record, err := academic.NewStudentAcademicRecord(req.TenantID, req.StudentID, req.TermID, classID, req.Status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.recordRepo.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	s.logger.Info("academic record created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("student_id", req.StudentID.String()),
		zap.String("term_id", req.TermID.String()),
		zap.String("status", req.Status.String()),
	)
	return record, nil
}

// ListRecordsByTerm returns the academic records in a term
func (s *AcademicService) ListRecordsByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter academic.AcademicRecordFilter) ([]academic.StudentAcademicRecord, error) {
	records, err := s.recordRepo.FindByTerm(ctx, tenantID, termID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// ListRecordsByStudent returns a student's academic history
func (s *AcademicService) ListRecordsByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]academic.StudentAcademicRecord, error) {
	records, err := s.recordRepo.FindByStudent(ctx, tenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}
