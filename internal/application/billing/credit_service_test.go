package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCreditService(creditRepo *MockCreditLedgerRepository) *CreditService {
	scope := NewNoOpTransactionScope(nil, nil, creditRepo, nil, nil)
	return NewCreditService(scope, creditRepo, zap.NewNop())
}

func makeCreditEntry(t *testing.T, tenantID, studentID, termID uuid.UUID, amount int64) billing.CreditLedgerEntry {
	t.Helper()
	entry, err := billing.NewCreditLedgerEntry(tenantID, studentID, termID, nil,
		valueobject.NewMoneyUGX(decimal.NewFromInt(amount)), "test surplus")
	require.NoError(t, err)
	return *entry
}

func TestCreditService_Bank(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	studentID := uuid.New()
	termID := uuid.New()

	t.Run("should create an active entry with full remaining amount", func(t *testing.T) {
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)
		creditRepo.On("Save", mock.Anything, mock.MatchedBy(func(e *billing.CreditLedgerEntry) bool {
			return e.Status == billing.CreditStatusActive &&
				e.RemainingAmount.Equal(decimal.NewFromInt(500))
		})).Return(nil)

		entry, err := service.Bank(ctx, BankRequest{
			TenantID:  tenantID,
			StudentID: studentID,
			TermID:    termID,
			Amount:    decimal.NewFromInt(500),
			Remark:    "overpayment",
		})

		require.NoError(t, err)
		assert.True(t, entry.Amount.Equal(decimal.NewFromInt(500)))
		assert.True(t, entry.RemainingAmount.Equal(decimal.NewFromInt(500)))
		creditRepo.AssertExpectations(t)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)

		_, err := service.Bank(ctx, BankRequest{
			TenantID:  tenantID,
			StudentID: studentID,
			TermID:    termID,
			Amount:    decimal.Zero,
		})

		require.Error(t, err)
		creditRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCreditService_Consume(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	studentID := uuid.New()
	termID := uuid.New()

	t.Run("should consume oldest entries first across multiple entries", func(t *testing.T) {
		older := makeCreditEntry(t, tenantID, studentID, termID, 300)
		newer := makeCreditEntry(t, tenantID, studentID, termID, 400)
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)
		creditRepo.On("FindActiveByStudent", mock.Anything, tenantID, studentID).
			Return([]billing.CreditLedgerEntry{older, newer}, nil)
		creditRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		result, err := service.Consume(ctx, tenantID, studentID, decimal.NewFromInt(500))

		require.NoError(t, err)
		assert.True(t, result.TotalConsumed.Equal(decimal.NewFromInt(500)))
		require.Len(t, result.EntryIDs, 2)
		assert.Equal(t, older.ID, result.EntryIDs[0])
		assert.Equal(t, newer.ID, result.EntryIDs[1])
		creditRepo.AssertNumberOfCalls(t, "SaveWithLock", 2)
	})

	t.Run("should fail before any write when credit is insufficient", func(t *testing.T) {
		entry := makeCreditEntry(t, tenantID, studentID, termID, 200)
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)
		creditRepo.On("FindActiveByStudent", mock.Anything, tenantID, studentID).
			Return([]billing.CreditLedgerEntry{entry}, nil)

		_, err := service.Consume(ctx, tenantID, studentID, decimal.NewFromInt(500))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_CREDIT", domainErr.Code)
		creditRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)

		_, err := service.Consume(ctx, tenantID, studentID, decimal.NewFromInt(-1))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})
}

func TestCreditService_Balance(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	studentID := uuid.New()

	t.Run("should return the summed remaining balance", func(t *testing.T) {
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)
		creditRepo.On("SumRemainingByStudent", mock.Anything, tenantID, studentID).
			Return(decimal.NewFromInt(750), nil)

		balance, err := service.Balance(ctx, tenantID, studentID)

		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(750)))
	})
}

func TestCreditService_Refund(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	studentID := uuid.New()
	termID := uuid.New()

	t.Run("should refund the remaining balance and close the entry", func(t *testing.T) {
		entry := makeCreditEntry(t, tenantID, studentID, termID, 300)
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)
		creditRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(&entry, nil)
		creditRepo.On("SaveWithLock", mock.Anything, &entry).Return(nil)

		refunded, err := service.Refund(ctx, tenantID, entry.ID)

		require.NoError(t, err)
		assert.True(t, refunded.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, billing.CreditStatusRefunded, entry.Status)
		assert.True(t, entry.RemainingAmount.IsZero())
	})

	t.Run("should fail for a missing entry", func(t *testing.T) {
		creditRepo := new(MockCreditLedgerRepository)
		service := newCreditService(creditRepo)
		missingID := uuid.New()
		creditRepo.On("FindByIDForTenant", mock.Anything, tenantID, missingID).Return(nil, nil)

		_, err := service.Refund(ctx, tenantID, missingID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CREDIT_NOT_FOUND", domainErr.Code)
	})
}
