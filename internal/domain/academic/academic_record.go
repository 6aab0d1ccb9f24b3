package academic

import (
	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// EnrollmentStatus represents a student's standing in a term
type EnrollmentStatus string

const (
	EnrollmentStatusActive      EnrollmentStatus = "ACTIVE"
	EnrollmentStatusGraduated   EnrollmentStatus = "GRADUATED"
	EnrollmentStatusTransferred EnrollmentStatus = "TRANSFERRED"
	EnrollmentStatusDroppedOut  EnrollmentStatus = "DROPPED_OUT"
)

// IsValid checks if the status is a valid EnrollmentStatus
func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusGraduated,
		EnrollmentStatusTransferred, EnrollmentStatusDroppedOut:
		return true
	}
	return false
}

// String returns the string representation of EnrollmentStatus
func (s EnrollmentStatus) String() string {
	return string(s)
}

// IsBillable reports whether a student with this standing counts toward a
// term's fee summary
func (s EnrollmentStatus) IsBillable() bool {
	return s == EnrollmentStatusActive
}

// StudentAcademicRecord is an immutable per-(student, term) snapshot of
// the student's standing and class assignment. Records are never mutated
// after creation, only superseded by records for later terms.
type StudentAcademicRecord struct {
	shared.TenantAggregateRoot
	StudentID uuid.UUID        `json:"student_id"`
	TermID    uuid.UUID        `json:"term_id"`
	ClassID   *uuid.UUID       `json:"class_id"`
	Status    EnrollmentStatus `json:"status"`
}

// NewStudentAcademicRecord creates a new academic record snapshot
func NewStudentAcademicRecord(
	tenantID uuid.UUID,
	studentID, termID uuid.UUID,
	classID *uuid.UUID,
	status EnrollmentStatus,
) (*StudentAcademicRecord, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if termID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TERM", "Term ID cannot be empty")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Enrollment status is not valid")
	}

	return &StudentAcademicRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StudentID:           studentID,
		TermID:              termID,
		ClassID:             classID,
		Status:              status,
	}, nil
}
