package academic

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockAcademicPeriodRepository struct {
	mock.Mock
}

func (m *MockAcademicPeriodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*academic.AcademicPeriod, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.AcademicPeriod), args.Error(1)
}

func (m *MockAcademicPeriodRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*academic.AcademicPeriod, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.AcademicPeriod), args.Error(1)
}

func (m *MockAcademicPeriodRepository) Save(ctx context.Context, period *academic.AcademicPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

type MockTermRepository struct {
	mock.Mock
}

func (m *MockTermRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*academic.Term, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Term), args.Error(1)
}

func (m *MockTermRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter academic.TermFilter) ([]academic.Term, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]academic.Term), args.Error(1)
}

func (m *MockTermRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*academic.Term, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Term), args.Error(1)
}

func (m *MockTermRepository) Save(ctx context.Context, term *academic.Term) error {
	args := m.Called(ctx, term)
	return args.Error(0)
}

func (m *MockTermRepository) SaveWithLock(ctx context.Context, term *academic.Term) error {
	args := m.Called(ctx, term)
	return args.Error(0)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*academic.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByAdmissionNumber(ctx context.Context, tenantID uuid.UUID, admissionNumber string) (*academic.Student, error) {
	args := m.Called(ctx, tenantID, admissionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]academic.Student, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]academic.Student), args.Error(1)
}

func (m *MockStudentRepository) Save(ctx context.Context, student *academic.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) SaveWithLock(ctx context.Context, student *academic.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

type MockAcademicRecordRepository struct {
	mock.Mock
}

func (m *MockAcademicRecordRepository) FindByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*academic.StudentAcademicRecord, error) {
	args := m.Called(ctx, tenantID, studentID, termID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*academic.StudentAcademicRecord), args.Error(1)
}

func (m *MockAcademicRecordRepository) FindByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter academic.AcademicRecordFilter) ([]academic.StudentAcademicRecord, error) {
	args := m.Called(ctx, tenantID, termID, filter)
	return args.Get(0).([]academic.StudentAcademicRecord), args.Error(1)
}

func (m *MockAcademicRecordRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]academic.StudentAcademicRecord, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).([]academic.StudentAcademicRecord), args.Error(1)
}

func (m *MockAcademicRecordRepository) Create(ctx context.Context, record *academic.StudentAcademicRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
