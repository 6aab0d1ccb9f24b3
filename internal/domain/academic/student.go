package academic

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// Student represents an enrolled student. The enrollment and graduation
// terms bound the window of terms the student's payments may be applied to.
type Student struct {
	shared.TenantAggregateRoot
	AdmissionNumber  string     `json:"admission_number"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	ClassID          *uuid.UUID `json:"class_id"`
	EnrollmentTermID *uuid.UUID `json:"enrollment_term_id"`
	GraduationTermID *uuid.UUID `json:"graduation_term_id"`
	IsActive         bool       `json:"is_active"`
}

// NewStudent creates a new student
func NewStudent(tenantID uuid.UUID, admissionNumber, firstName, lastName string) (*Student, error) {
	if admissionNumber == "" {
		return nil, shared.NewDomainError("INVALID_ADMISSION_NUMBER", "Admission number cannot be empty")
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Student name cannot be empty")
	}

	return &Student{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AdmissionNumber:     admissionNumber,
		FirstName:           firstName,
		LastName:            lastName,
		IsActive:            true,
	}, nil
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// ClassScope resolves the student's fee-scoping class. The second return
// value is false when the student has no class assignment, meaning only
// unscoped fee lines apply.
func (s *Student) ClassScope() (uuid.UUID, bool) {
	if s.ClassID == nil || *s.ClassID == uuid.Nil {
		return uuid.Nil, false
	}
	return *s.ClassID, true
}

// AssignClass sets the student's class
func (s *Student) AssignClass(classID uuid.UUID) error {
	if classID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLASS", "Class ID cannot be empty")
	}
	s.ClassID = &classID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetEnrollmentTerm records the first term the student is billable in
func (s *Student) SetEnrollmentTerm(termID uuid.UUID) error {
	if termID == uuid.Nil {
		return shared.NewDomainError("INVALID_TERM", "Enrollment term ID cannot be empty")
	}
	s.EnrollmentTermID = &termID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetGraduationTerm records the last term the student is billable in
func (s *Student) SetGraduationTerm(termID uuid.UUID) error {
	if termID == uuid.Nil {
		return shared.NewDomainError("INVALID_TERM", "Graduation term ID cannot be empty")
	}
	s.GraduationTermID = &termID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate marks the student inactive
func (s *Student) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
