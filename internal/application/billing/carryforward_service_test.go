package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type carryForwardFixture struct {
	tenantID uuid.UUID
	fromTerm *academic.Term
	toTerm   *academic.Term

	feeRepo     *MockExpectedFeeRepository
	allocRepo   *MockPaymentAllocationRepository
	recordRepo  *MockAcademicRecordRepository
	termRepo    *MockTermRepository
	idempotency *MockIdempotencyStore
	service     *CarryForwardService
}

func newCarryForwardFixture(t *testing.T) *carryForwardFixture {
	t.Helper()

	f := &carryForwardFixture{tenantID: uuid.New()}
	periodID := uuid.New()
	periodStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var err error
	f.fromTerm, err = academic.NewTerm(f.tenantID, periodID, "Term 1 2024", 1,
		periodStart, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), periodStart)
	require.NoError(t, err)
	f.toTerm, err = academic.NewTerm(f.tenantID, periodID, "Term 2 2024", 2,
		time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC), periodStart)
	require.NoError(t, err)

	f.feeRepo = new(MockExpectedFeeRepository)
	f.allocRepo = new(MockPaymentAllocationRepository)
	f.recordRepo = new(MockAcademicRecordRepository)
	f.termRepo = new(MockTermRepository)
	f.idempotency = new(MockIdempotencyStore)

	scope := NewNoOpTransactionScope(nil, f.allocRepo, nil, f.feeRepo, nil)
	f.service = NewCarryForwardService(scope, f.feeRepo, f.allocRepo, f.recordRepo,
		f.termRepo, f.idempotency, shared.DefaultIdempotencyConfig(), zap.NewNop())
	return f
}

func (f *carryForwardFixture) termFee(t *testing.T, termID uuid.UUID, amount int64) billing.ExpectedFee {
	t.Helper()
	fee, err := billing.NewExpectedFee(f.tenantID, termID, nil, "Tuition",
		billing.FeeCategoryTuition, valueobject.NewMoneyUGX(decimal.NewFromInt(amount)),
		false, billing.FeeFrequencyPerTerm, nil)
	require.NoError(t, err)
	return *fee
}

func TestCarryForwardService_CalculateOutstanding(t *testing.T) {
	ctx := context.Background()

	t.Run("should report positive remainders only", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.fromTerm.ID).Return(f.fromTerm, nil)

		owing := uuid.New()
		settled := uuid.New()
		recordA, err := academic.NewStudentAcademicRecord(f.tenantID, owing, f.fromTerm.ID, nil, academic.EnrollmentStatusActive)
		require.NoError(t, err)
		recordB, err := academic.NewStudentAcademicRecord(f.tenantID, settled, f.fromTerm.ID, nil, academic.EnrollmentStatusActive)
		require.NoError(t, err)
		f.recordRepo.On("FindByTerm", mock.Anything, f.tenantID, f.fromTerm.ID, academic.AcademicRecordFilter{}).
			Return([]academic.StudentAcademicRecord{*recordA, *recordB}, nil)

		f.feeRepo.On("FindByTerm", mock.Anything, f.tenantID, f.fromTerm.ID).
			Return([]billing.ExpectedFee{f.termFee(t, f.fromTerm.ID, 1000)}, nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, owing, f.fromTerm.ID).
			Return(decimal.NewFromInt(600), nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, settled, f.fromTerm.ID).
			Return(decimal.NewFromInt(1000), nil)

		balances, err := f.service.CalculateOutstanding(ctx, f.tenantID, f.fromTerm.ID)

		require.NoError(t, err)
		require.Len(t, balances, 1)
		assert.Equal(t, owing, balances[0].StudentID)
		assert.True(t, balances[0].Outstanding.Equal(decimal.NewFromInt(400)))
		assert.Contains(t, balances[0].Reason, "Term 1 2024")
	})

	t.Run("should fail for a missing term", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		missingID := uuid.New()
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, missingID).Return(nil, nil)

		_, err := f.service.CalculateOutstanding(ctx, f.tenantID, missingID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TERM_NOT_FOUND", domainErr.Code)
	})
}

func TestCarryForwardService_CarryForward(t *testing.T) {
	ctx := context.Background()

	setupOutstanding := func(t *testing.T, f *carryForwardFixture, studentID uuid.UUID, expected, paid int64) {
		t.Helper()
		record, err := academic.NewStudentAcademicRecord(f.tenantID, studentID, f.fromTerm.ID, nil, academic.EnrollmentStatusActive)
		require.NoError(t, err)
		f.recordRepo.On("FindByTerm", mock.Anything, f.tenantID, f.fromTerm.ID, academic.AcademicRecordFilter{}).
			Return([]academic.StudentAcademicRecord{*record}, nil)
		f.feeRepo.On("FindByTerm", mock.Anything, f.tenantID, f.fromTerm.ID).
			Return([]billing.ExpectedFee{f.termFee(t, f.fromTerm.ID, expected)}, nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.fromTerm.ID).
			Return(decimal.NewFromInt(paid), nil)
	}

	t.Run("should create carry-forward rows atomically", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		studentID := uuid.New()
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.toTerm.ID).Return(f.toTerm, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.fromTerm.ID).Return(f.fromTerm, nil)
		f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
		f.idempotency.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		setupOutstanding(t, f, studentID, 1000, 600)
		f.feeRepo.On("FindCarryForward", mock.Anything, f.tenantID, f.fromTerm.ID, f.toTerm.ID, (*uuid.UUID)(nil)).
			Return([]billing.ExpectedFee{}, nil)
		f.feeRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(fees []*billing.ExpectedFee) bool {
			return len(fees) == 1 &&
				fees[0].IsCarryForward &&
				fees[0].TermID == f.toTerm.ID &&
				*fees[0].StudentID == studentID &&
				fees[0].Amount.Equal(decimal.NewFromInt(400))
		})).Return(nil)

		summary, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.StudentCount)
		assert.Equal(t, 1, summary.CreatedCount)
		assert.Equal(t, 0, summary.SkippedCount)
		assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(400)))
		f.feeRepo.AssertExpectations(t)
	})

	t.Run("should skip students who already have a carry-forward row", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		studentID := uuid.New()
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.toTerm.ID).Return(f.toTerm, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.fromTerm.ID).Return(f.fromTerm, nil)
		f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
		f.idempotency.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		setupOutstanding(t, f, studentID, 1000, 600)

		existing, err := billing.NewCarryForwardFee(f.tenantID, studentID, f.fromTerm.ID, f.toTerm.ID,
			valueobject.NewMoneyUGX(decimal.NewFromInt(400)), "Balance carried forward from Term 1 2024")
		require.NoError(t, err)
		f.feeRepo.On("FindCarryForward", mock.Anything, f.tenantID, f.fromTerm.ID, f.toTerm.ID, (*uuid.UUID)(nil)).
			Return([]billing.ExpectedFee{*existing}, nil)

		summary, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.StudentCount)
		assert.Equal(t, 0, summary.CreatedCount)
		assert.Equal(t, 1, summary.SkippedCount)
		assert.True(t, summary.TotalAmount.IsZero())
		f.feeRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("should reject a repeated run for the same term pair", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.toTerm.ID).Return(f.toTerm, nil)
		f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(true, nil)

		_, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
		f.feeRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("should allow a retry after a failed run", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		studentID := uuid.New()
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.toTerm.ID).Return(f.toTerm, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.fromTerm.ID).Return(f.fromTerm, nil)
		f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
		f.idempotency.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		setupOutstanding(t, f, studentID, 1000, 600)
		f.feeRepo.On("FindCarryForward", mock.Anything, f.tenantID, f.fromTerm.ID, f.toTerm.ID, (*uuid.UUID)(nil)).
			Return([]billing.ExpectedFee{}, nil)
		f.feeRepo.On("SaveAll", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
		f.feeRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID)
		require.Error(t, err)
		f.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)

		summary, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.CreatedCount)
		f.idempotency.AssertNumberOfCalls(t, "MarkProcessed", 1)
	})

	t.Run("should reject when the source term has no outstanding balances", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		studentID := uuid.New()
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.toTerm.ID).Return(f.toTerm, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.fromTerm.ID).Return(f.fromTerm, nil)
		f.idempotency.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
		setupOutstanding(t, f, studentID, 1000, 1000)

		_, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
		f.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should reject carrying a term into itself", func(t *testing.T) {
		f := newCarryForwardFixture(t)

		_, err := f.service.CarryForward(ctx, f.tenantID, f.fromTerm.ID, f.fromTerm.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})
}

func TestCarryForwardService_Reverse(t *testing.T) {
	ctx := context.Background()

	t.Run("should delete the matching carry-forward rows", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		studentID := uuid.New()
		row, err := billing.NewCarryForwardFee(f.tenantID, studentID, f.fromTerm.ID, f.toTerm.ID,
			valueobject.NewMoneyUGX(decimal.NewFromInt(400)), "Balance carried forward from Term 1 2024")
		require.NoError(t, err)
		f.feeRepo.On("FindCarryForward", mock.Anything, f.tenantID, f.fromTerm.ID, f.toTerm.ID, &studentID).
			Return([]billing.ExpectedFee{*row}, nil)
		f.feeRepo.On("DeleteForTenant", mock.Anything, f.tenantID, row.ID).Return(nil)

		removed, err := f.service.Reverse(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID, &studentID)

		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		f.feeRepo.AssertExpectations(t)
	})

	t.Run("should remove nothing when no rows match", func(t *testing.T) {
		f := newCarryForwardFixture(t)
		f.feeRepo.On("FindCarryForward", mock.Anything, f.tenantID, f.fromTerm.ID, f.toTerm.ID, (*uuid.UUID)(nil)).
			Return([]billing.ExpectedFee{}, nil)

		removed, err := f.service.Reverse(ctx, f.tenantID, f.fromTerm.ID, f.toTerm.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, removed)
		f.feeRepo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}
