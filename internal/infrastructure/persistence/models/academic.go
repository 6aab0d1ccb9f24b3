package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
)

// AcademicPeriodModel is the persistence model for the AcademicPeriod aggregate root.
type AcademicPeriodModel struct {
	TenantAggregateModel
	Name      string    `gorm:"type:varchar(100);not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	IsCurrent bool      `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (AcademicPeriodModel) TableName() string {
	return "academic_periods"
}

// ToDomain converts the persistence model to a domain AcademicPeriod entity.
func (m *AcademicPeriodModel) ToDomain() *academic.AcademicPeriod {
	return &academic.AcademicPeriod{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		Name:                m.Name,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		IsCurrent:           m.IsCurrent,
	}
}

// FromDomain populates the persistence model from a domain AcademicPeriod entity.
func (m *AcademicPeriodModel) FromDomain(p *academic.AcademicPeriod) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.IsCurrent = p.IsCurrent
}

// AcademicPeriodModelFromDomain creates a new persistence model from a domain AcademicPeriod.
func AcademicPeriodModelFromDomain(p *academic.AcademicPeriod) *AcademicPeriodModel {
	m := &AcademicPeriodModel{}
	m.FromDomain(p)
	return m
}

// TermModel is the persistence model for the Term aggregate root.
// The parent period's start date is denormalized so terms order without a join.
type TermModel struct {
	TenantAggregateModel
	AcademicPeriodID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name             string    `gorm:"type:varchar(100);not null"`
	TermNumber       int       `gorm:"not null"`
	StartDate        time.Time `gorm:"not null"`
	EndDate          time.Time `gorm:"not null;index"`
	PeriodStartDate  time.Time `gorm:"not null;index"`
	IsCurrent        bool      `gorm:"not null;default:false;index"`
	IsCompleted      bool      `gorm:"not null;default:false;index"`
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (TermModel) TableName() string {
	return "terms"
}

// ToDomain converts the persistence model to a domain Term entity.
func (m *TermModel) ToDomain() *academic.Term {
	return &academic.Term{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		AcademicPeriodID:    m.AcademicPeriodID,
		Name:                m.Name,
		TermNumber:          m.TermNumber,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		PeriodStartDate:     m.PeriodStartDate,
		IsCurrent:           m.IsCurrent,
		IsCompleted:         m.IsCompleted,
		CompletedAt:         m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Term entity.
func (m *TermModel) FromDomain(t *academic.Term) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.AcademicPeriodID = t.AcademicPeriodID
	m.Name = t.Name
	m.TermNumber = t.TermNumber
	m.StartDate = t.StartDate
	m.EndDate = t.EndDate
	m.PeriodStartDate = t.PeriodStartDate
	m.IsCurrent = t.IsCurrent
	m.IsCompleted = t.IsCompleted
	m.CompletedAt = t.CompletedAt
}

// TermModelFromDomain creates a new persistence model from a domain Term.
func TermModelFromDomain(t *academic.Term) *TermModel {
	m := &TermModel{}
	m.FromDomain(t)
	return m
}

// StudentModel is the persistence model for the Student aggregate root.
type StudentModel struct {
	TenantAggregateModel
	AdmissionNumber  string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_student_tenant_admission,priority:2"`
	FirstName        string     `gorm:"type:varchar(100);not null"`
	LastName         string     `gorm:"type:varchar(100);not null"`
	ClassID          *uuid.UUID `gorm:"type:uuid;index"`
	EnrollmentTermID *uuid.UUID `gorm:"type:uuid"`
	GraduationTermID *uuid.UUID `gorm:"type:uuid"`
	IsActive         bool       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student entity.
func (m *StudentModel) ToDomain() *academic.Student {
	return &academic.Student{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		AdmissionNumber:     m.AdmissionNumber,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		ClassID:             m.ClassID,
		EnrollmentTermID:    m.EnrollmentTermID,
		GraduationTermID:    m.GraduationTermID,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Student entity.
func (m *StudentModel) FromDomain(s *academic.Student) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.AdmissionNumber = s.AdmissionNumber
	m.FirstName = s.FirstName
	m.LastName = s.LastName
	m.ClassID = s.ClassID
	m.EnrollmentTermID = s.EnrollmentTermID
	m.GraduationTermID = s.GraduationTermID
	m.IsActive = s.IsActive
}

// StudentModelFromDomain creates a new persistence model from a domain Student.
func StudentModelFromDomain(s *academic.Student) *StudentModel {
	m := &StudentModel{}
	m.FromDomain(s)
	return m
}

// StudentAcademicRecordModel is the persistence model for the per-(student, term)
// enrollment record. Rows are insert-only.
type StudentAcademicRecordModel struct {
	TenantAggregateModel
	StudentID uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_record_tenant_student_term,priority:2"`
	TermID    uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_record_tenant_student_term,priority:3;index"`
	ClassID   *uuid.UUID                `gorm:"type:uuid;index"`
	Status    academic.EnrollmentStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (StudentAcademicRecordModel) TableName() string {
	return "student_academic_records"
}

// ToDomain converts the persistence model to a domain StudentAcademicRecord entity.
func (m *StudentAcademicRecordModel) ToDomain() *academic.StudentAcademicRecord {
	return &academic.StudentAcademicRecord{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		StudentID:           m.StudentID,
		TermID:              m.TermID,
		ClassID:             m.ClassID,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain StudentAcademicRecord entity.
func (m *StudentAcademicRecordModel) FromDomain(r *academic.StudentAcademicRecord) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.StudentID = r.StudentID
	m.TermID = r.TermID
	m.ClassID = r.ClassID
	m.Status = r.Status
}

// StudentAcademicRecordModelFromDomain creates a new persistence model from a domain record.
func StudentAcademicRecordModelFromDomain(r *academic.StudentAcademicRecord) *StudentAcademicRecordModel {
	m := &StudentAcademicRecordModel{}
	m.FromDomain(r)
	return m
}
