package billing

import (
	"context"
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

type feeStatusFixture struct {
	tenantID uuid.UUID
	term     *academic.Term

	feeRepo      *MockExpectedFeeRepository
	allocRepo    *MockPaymentAllocationRepository
	creditRepo   *MockCreditLedgerRepository
	snapshotRepo *MockFeeSnapshotRepository
	recordRepo   *MockAcademicRecordRepository
	termRepo     *MockTermRepository
	service      *FeeStatusService
}

func newFeeStatusFixture(t *testing.T, endDate time.Time) *feeStatusFixture {
	t.Helper()

	f := &feeStatusFixture{tenantID: uuid.New()}
	periodStart := endDate.AddDate(0, -4, 0)
	var err error
	f.term, err = academic.NewTerm(f.tenantID, uuid.New(), "Term 1", 1,
		periodStart, endDate, periodStart)
	require.NoError(t, err)

	f.feeRepo = new(MockExpectedFeeRepository)
	f.allocRepo = new(MockPaymentAllocationRepository)
	f.creditRepo = new(MockCreditLedgerRepository)
	f.snapshotRepo = new(MockFeeSnapshotRepository)
	f.recordRepo = new(MockAcademicRecordRepository)
	f.termRepo = new(MockTermRepository)

	f.service = NewFeeStatusService(f.feeRepo, f.allocRepo, f.creditRepo,
		f.snapshotRepo, f.recordRepo, f.termRepo, zap.NewNop())
	return f
}

func (f *feeStatusFixture) enroll(t *testing.T, studentID uuid.UUID, status academic.EnrollmentStatus) *academic.StudentAcademicRecord {
	t.Helper()
	record, err := academic.NewStudentAcademicRecord(f.tenantID, studentID, f.term.ID, nil, status)
	require.NoError(t, err)
	return record
}

func (f *feeStatusFixture) tuitionFee(t *testing.T, amount int64, dueDate *time.Time) billing.ExpectedFee {
	t.Helper()
	fee, err := billing.NewExpectedFee(f.tenantID, f.term.ID, nil, "Tuition",
		billing.FeeCategoryTuition, valueobject.NewMoneyUGX(decimal.NewFromInt(amount)),
		false, billing.FeeFrequencyPerTerm, dueDate)
	require.NoError(t, err)
	return *fee
}

func TestFeeStatusService_StudentStatus(t *testing.T) {
	ctx := context.Background()
	future := time.Now().AddDate(0, 2, 0)

	t.Run("should compose live status for an open term", func(t *testing.T) {
		f := newFeeStatusFixture(t, future)
		studentID := uuid.New()
		dueDate := time.Now().AddDate(0, 0, -20)

		f.creditRepo.On("SumRemainingByStudent", mock.Anything, f.tenantID, studentID).Return(decimal.NewFromInt(50), nil)
		f.snapshotRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).Return(nil, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.term.ID).Return(f.term, nil)
		f.recordRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
			Return(f.enroll(t, studentID, academic.EnrollmentStatusActive), nil)
		f.feeRepo.On("FindByTerm", mock.Anything, f.tenantID, f.term.ID).
			Return([]billing.ExpectedFee{f.tuitionFee(t, 1000, &dueDate)}, nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
			Return(decimal.NewFromInt(600), nil)

		status, err := f.service.StudentStatus(ctx, f.tenantID, studentID, f.term.ID)

		require.NoError(t, err)
		assert.True(t, status.ExpectedAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, status.PaidAmount.Equal(decimal.NewFromInt(600)))
		assert.True(t, status.OutstandingAmount.Equal(decimal.NewFromInt(400)))
		assert.True(t, status.OverdueAmount.Equal(decimal.NewFromInt(400)))
		assert.True(t, status.CreditBalance.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, billing.FeeStatusPartial, status.Status)
		assert.True(t, status.IsOverdue)
		assert.False(t, status.FromSnapshot)
	})

	t.Run("should serve a snapshot when one exists", func(t *testing.T) {
		f := newFeeStatusFixture(t, time.Now().AddDate(0, -1, 0))
		studentID := uuid.New()

		frozen := billing.NewStudentFeeStatus(studentID, f.term.ID,
			billing.FeeExpectation{TotalExpected: decimal.NewFromInt(800)},
			decimal.NewFromInt(800), billing.OverdueResult{OverdueAmount: decimal.Zero}, decimal.Zero)
		snapshot, err := billing.NewStudentFeeSnapshot(f.tenantID, frozen)
		require.NoError(t, err)

		f.creditRepo.On("SumRemainingByStudent", mock.Anything, f.tenantID, studentID).Return(decimal.NewFromInt(120), nil)
		f.snapshotRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).Return(snapshot, nil)

		status, err := f.service.StudentStatus(ctx, f.tenantID, studentID, f.term.ID)

		require.NoError(t, err)
		assert.True(t, status.FromSnapshot)
		assert.Equal(t, billing.FeeStatusPaid, status.Status)
		assert.True(t, status.CreditBalance.Equal(decimal.NewFromInt(120)))
		f.feeRepo.AssertNotCalled(t, "FindByTerm", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should fall back to live composition for an ended term without snapshot", func(t *testing.T) {
		f := newFeeStatusFixture(t, time.Now().AddDate(0, -1, 0))
		studentID := uuid.New()

		f.creditRepo.On("SumRemainingByStudent", mock.Anything, f.tenantID, studentID).Return(decimal.Zero, nil)
		f.snapshotRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).Return(nil, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.term.ID).Return(f.term, nil)
		f.recordRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
			Return(f.enroll(t, studentID, academic.EnrollmentStatusActive), nil)
		f.feeRepo.On("FindByTerm", mock.Anything, f.tenantID, f.term.ID).
			Return([]billing.ExpectedFee{f.tuitionFee(t, 1000, nil)}, nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
			Return(decimal.NewFromInt(1000), nil)

		status, err := f.service.StudentStatus(ctx, f.tenantID, studentID, f.term.ID)

		require.NoError(t, err)
		assert.Equal(t, billing.FeeStatusPaid, status.Status)
		assert.False(t, status.FromSnapshot)
	})

	t.Run("should fail for a student without an academic record", func(t *testing.T) {
		f := newFeeStatusFixture(t, future)
		studentID := uuid.New()

		f.creditRepo.On("SumRemainingByStudent", mock.Anything, f.tenantID, studentID).Return(decimal.Zero, nil)
		f.snapshotRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).Return(nil, nil)
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.term.ID).Return(f.term, nil)
		f.recordRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).Return(nil, nil)

		_, err := f.service.StudentStatus(ctx, f.tenantID, studentID, f.term.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STUDENT_NOT_ENROLLED", domainErr.Code)
	})
}

func TestFeeStatusService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("should aggregate active students into buckets", func(t *testing.T) {
		f := newFeeStatusFixture(t, time.Now().AddDate(0, 2, 0))
		paidStudent := uuid.New()
		partialStudent := uuid.New()
		graduated := uuid.New()

		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.term.ID).Return(f.term, nil)
		f.recordRepo.On("FindByTerm", mock.Anything, f.tenantID, f.term.ID, academic.AcademicRecordFilter{}).
			Return([]academic.StudentAcademicRecord{
				*f.enroll(t, paidStudent, academic.EnrollmentStatusActive),
				*f.enroll(t, partialStudent, academic.EnrollmentStatusActive),
				*f.enroll(t, graduated, academic.EnrollmentStatusGraduated),
			}, nil)

		fees := []billing.ExpectedFee{f.tuitionFee(t, 1000, nil)}
		f.feeRepo.On("FindByTerm", mock.Anything, f.tenantID, f.term.ID).Return(fees, nil)
		for _, studentID := range []uuid.UUID{paidStudent, partialStudent} {
			f.creditRepo.On("SumRemainingByStudent", mock.Anything, f.tenantID, studentID).Return(decimal.Zero, nil)
			f.snapshotRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).Return(nil, nil)
			f.recordRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
				Return(f.enroll(t, studentID, academic.EnrollmentStatusActive), nil)
		}
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, paidStudent, f.term.ID).
			Return(decimal.NewFromInt(1000), nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, partialStudent, f.term.ID).
			Return(decimal.NewFromInt(500), nil)

		summary, err := f.service.Summary(ctx, f.tenantID, f.term.ID)

		require.NoError(t, err)
		assert.Equal(t, 2, summary.StudentCount)
		assert.Equal(t, 1, summary.PaidCount)
		assert.Equal(t, 1, summary.PartialCount)
		assert.Equal(t, 0, summary.UnpaidCount)
		assert.True(t, summary.TotalExpected.Equal(decimal.NewFromInt(2000)))
		assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(1500)))
		assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(500)))
		assert.True(t, summary.AveragePaymentPerStudent.Equal(decimal.NewFromInt(750)))
		assert.False(t, summary.HasEnded)
	})

	t.Run("should fail for a missing term", func(t *testing.T) {
		f := newFeeStatusFixture(t, time.Now().AddDate(0, 2, 0))
		missingID := uuid.New()
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, missingID).Return(nil, nil)

		_, err := f.service.Summary(ctx, f.tenantID, missingID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TERM_NOT_FOUND", domainErr.Code)
	})
}

func TestFeeStatusService_WriteSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("should freeze the live status of every enrolled student", func(t *testing.T) {
		f := newFeeStatusFixture(t, time.Now().AddDate(0, -1, 0))
		studentID := uuid.New()

		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.term.ID).Return(f.term, nil)
		f.recordRepo.On("FindByTerm", mock.Anything, f.tenantID, f.term.ID, academic.AcademicRecordFilter{}).
			Return([]academic.StudentAcademicRecord{*f.enroll(t, studentID, academic.EnrollmentStatusActive)}, nil)
		f.recordRepo.On("FindByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
			Return(f.enroll(t, studentID, academic.EnrollmentStatusActive), nil)
		f.feeRepo.On("FindByTerm", mock.Anything, f.tenantID, f.term.ID).
			Return([]billing.ExpectedFee{f.tuitionFee(t, 1000, nil)}, nil)
		f.allocRepo.On("SumByStudentAndTerm", mock.Anything, f.tenantID, studentID, f.term.ID).
			Return(decimal.NewFromInt(400), nil)
		f.snapshotRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(snapshots []*billing.StudentFeeSnapshot) bool {
			return len(snapshots) == 1 &&
				snapshots[0].StudentID == studentID &&
				snapshots[0].OutstandingAmount.Equal(decimal.NewFromInt(600)) &&
				snapshots[0].Status == billing.FeeStatusPartial
		})).Return(nil)

		count, err := f.service.WriteSnapshots(ctx, f.tenantID, f.term.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
		f.snapshotRepo.AssertExpectations(t)
	})

	t.Run("should refuse to snapshot a term that has not ended", func(t *testing.T) {
		f := newFeeStatusFixture(t, time.Now().AddDate(0, 2, 0))
		f.termRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.term.ID).Return(f.term, nil)

		_, err := f.service.WriteSnapshots(ctx, f.tenantID, f.term.ID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
		f.snapshotRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})
}
