package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Billing repository mocks
// =============================================================================

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
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, studentID, filter)
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
	return args.Get(0).(string), args.Error(1)
}

type MockPaymentAllocationRepository struct {
	mock.Mock
}

func (m *MockPaymentAllocationRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Get(0).([]billing.PaymentAllocation), args.Error(1)
}

func (m *MockPaymentAllocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentAllocationFilter) ([]billing.PaymentAllocation, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.PaymentAllocation), args.Error(1)
}

func (m *MockPaymentAllocationRepository) Save(ctx context.Context, allocation *billing.PaymentAllocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockPaymentAllocationRepository) SaveAll(ctx context.Context, allocations []*billing.PaymentAllocation) error {
	args := m.Called(ctx, allocations)
	return args.Error(0)
}

func (m *MockPaymentAllocationRepository) SumByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentAllocationRepository) SumByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, studentID, termID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentAllocationRepository) SumByTerm(ctx context.Context, tenantID, termID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, termID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockExpectedFeeRepository struct {
	mock.Mock
}

func (m *MockExpectedFeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.ExpectedFee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ExpectedFee), args.Error(1)
}

func (m *MockExpectedFeeRepository) FindByTerm(ctx context.Context, tenantID, termID uuid.UUID) ([]billing.ExpectedFee, error) {
	args := m.Called(ctx, tenantID, termID)
	return args.Get(0).([]billing.ExpectedFee), args.Error(1)
}

func (m *MockExpectedFeeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ExpectedFeeFilter) ([]billing.ExpectedFee, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.ExpectedFee), args.Error(1)
}

func (m *MockExpectedFeeRepository) FindCarryForward(ctx context.Context, tenantID, fromTermID, toTermID uuid.UUID, studentID *uuid.UUID) ([]billing.ExpectedFee, error) {
	args := m.Called(ctx, tenantID, fromTermID, toTermID, studentID)
	return args.Get(0).([]billing.ExpectedFee), args.Error(1)
}

func (m *MockExpectedFeeRepository) Save(ctx context.Context, fee *billing.ExpectedFee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockExpectedFeeRepository) SaveAll(ctx context.Context, fees []*billing.ExpectedFee) error {
	args := m.Called(ctx, fees)
	return args.Error(0)
}

func (m *MockExpectedFeeRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockCreditLedgerRepository struct {
	mock.Mock
}

func (m *MockCreditLedgerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.CreditLedgerEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CreditLedgerEntry), args.Error(1)
}

func (m *MockCreditLedgerRepository) FindActiveByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]billing.CreditLedgerEntry, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).([]billing.CreditLedgerEntry), args.Error(1)
}

func (m *MockCreditLedgerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.CreditLedgerFilter) ([]billing.CreditLedgerEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.CreditLedgerEntry), args.Error(1)
}

func (m *MockCreditLedgerRepository) Save(ctx context.Context, entry *billing.CreditLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCreditLedgerRepository) SaveWithLock(ctx context.Context, entry *billing.CreditLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCreditLedgerRepository) SumRemainingByStudent(ctx context.Context, tenantID, studentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockFeeSnapshotRepository struct {
	mock.Mock
}

func (m *MockFeeSnapshotRepository) FindByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (*billing.StudentFeeSnapshot, error) {
	args := m.Called(ctx, tenantID, studentID, termID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.StudentFeeSnapshot), args.Error(1)
}

func (m *MockFeeSnapshotRepository) FindByTerm(ctx context.Context, tenantID, termID uuid.UUID, filter billing.FeeSnapshotFilter) ([]billing.StudentFeeSnapshot, error) {
	args := m.Called(ctx, tenantID, termID, filter)
	return args.Get(0).([]billing.StudentFeeSnapshot), args.Error(1)
}

func (m *MockFeeSnapshotRepository) SaveAll(ctx context.Context, snapshots []*billing.StudentFeeSnapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

// =============================================================================
// Academic repository mocks
// =============================================================================

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

// =============================================================================
// Shared infrastructure mocks
// =============================================================================

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
