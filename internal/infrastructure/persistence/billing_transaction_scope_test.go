package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appbilling "github.com/schoolerp/backend/internal/application/billing"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	reader := NewGormPaymentRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()

	t.Run("commits on success", func(t *testing.T) {
		payment := mustNewPayment(t, tenantID, "PAY-TX-00001", uuid.New(), uuid.New(), 50000)

		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			return repos.PaymentRepo().Save(ctx, payment)
		})
		require.NoError(t, err)

		found, err := reader.FindByIDForTenant(ctx, tenantID, payment.ID)
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		payment := mustNewPayment(t, tenantID, "PAY-TX-00002", uuid.New(), uuid.New(), 50000)
		boom := errors.New("allocation rejected")

		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		found, err := reader.FindByIDForTenant(ctx, tenantID, payment.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("repositories share one transaction", func(t *testing.T) {
		payment := mustNewPayment(t, tenantID, "PAY-TX-00003", uuid.New(), uuid.New(), 70000)
		require.NoError(t, payment.Complete())
		alloc := mustNewAllocation(t, tenantID, payment.ID, payment.StudentID, payment.TermID,
			70000, billing.AllocationReasonTermFees)

		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
				return err
			}
			return repos.AllocationRepo().Save(ctx, alloc)
		})
		require.NoError(t, err)

		allocations, err := NewGormPaymentAllocationRepository(db).FindByPayment(ctx, tenantID, payment.ID)
		require.NoError(t, err)
		assert.Len(t, allocations, 1)
	})
}
