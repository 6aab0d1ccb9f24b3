package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// MockTermRepository implements academic.TermRepository for testing
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

// MockAcademicPeriodRepository implements academic.AcademicPeriodRepository for testing
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

// MockStudentRepository implements academic.StudentRepository for testing
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

// MockAcademicRecordRepository implements academic.AcademicRecordRepository for testing
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]academic.StudentAcademicRecord), args.Error(1)
}

func (m *MockAcademicRecordRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]academic.StudentAcademicRecord, error) {
	args := m.Called(ctx, tenantID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]academic.StudentAcademicRecord), args.Error(1)
}

func (m *MockAcademicRecordRepository) Create(ctx context.Context, record *academic.StudentAcademicRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockPaymentRepository implements billing.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, studentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumCapturedByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, studentID, termID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}
