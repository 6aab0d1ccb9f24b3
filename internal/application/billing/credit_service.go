package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditService manages the credit ledger: banking surplus cash and
// consuming it later. Credit is student-scoped for consumption; the
// originating term is kept for audit only.
type CreditService struct {
	scope      TransactionScope
	creditRepo billing.CreditLedgerRepository
	logger     *zap.Logger
}

// NewCreditService creates a new CreditService
func NewCreditService(scope TransactionScope, creditRepo billing.CreditLedgerRepository, logger *zap.Logger) *CreditService {
	return &CreditService{
		scope:      scope,
		creditRepo: creditRepo,
		logger:     logger,
	}
}

// BankRequest represents a request to bank surplus cash as credit
type BankRequest struct {
	TenantID        uuid.UUID
	StudentID       uuid.UUID
	TermID          uuid.UUID
	SourcePaymentID *uuid.UUID
	Amount          decimal.Decimal
	Remark          string
}

// Bank creates an active credit ledger entry for a surplus amount
func (s *CreditService) Bank(ctx context.Context, req BankRequest) (*billing.CreditLedgerEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit", "bank")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrStudentID, req.StudentID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	entry, err := billing.NewCreditLedgerEntry(
		req.TenantID, req.StudentID, req.TermID, req.SourcePaymentID,
		valueobject.NewMoneyUGX(req.Amount), req.Remark,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.CreditRepo().Save(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save credit entry: %w", err)
	}

	s.logger.Info("credit banked",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("student_id", req.StudentID.String()),
		zap.String("amount", req.Amount.String()),
	)
	return entry, nil
}

// ConsumeResult reports which entries a consumption drew from
type ConsumeResult struct {
	TotalConsumed decimal.Decimal `json:"total_consumed"`
	EntryIDs      []uuid.UUID     `json:"entry_ids"`
}

// Consume draws the given amount from a student's active credit entries,
// oldest first. Fails with INSUFFICIENT_CREDIT before any write when the
// student's total usable credit does not cover the amount. Decrements are
// saved with optimistic locking so concurrent consumptions of the same
// entry serialize.
func (s *CreditService) Consume(ctx context.Context, tenantID, studentID uuid.UUID, amount decimal.Decimal) (*ConsumeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit", "consume")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrStudentID, studentID.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	if amount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Consume amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *ConsumeResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entries, err := repos.CreditRepo().FindActiveByStudent(ctx, tenantID, studentID)
		if err != nil {
			return fmt.Errorf("failed to load credit entries: %w", err)
		}

		available := decimal.Zero
		for i := range entries {
			available = available.Add(entries[i].RemainingAmount)
		}
		if available.LessThan(amount) {
			return shared.NewDomainError("INSUFFICIENT_CREDIT",
				fmt.Sprintf("Consume amount %s exceeds usable credit %s", amount.String(), available.String()))
		}

		result = &ConsumeResult{TotalConsumed: decimal.Zero, EntryIDs: make([]uuid.UUID, 0)}
		remaining := amount
		for i := range entries {
			if remaining.IsZero() {
				break
			}
			entry := &entries[i]
			take := decimal.Min(remaining, entry.RemainingAmount)
			if err := entry.Consume(valueobject.NewMoneyUGX(take)); err != nil {
				return err
			}
			if err := repos.CreditRepo().SaveWithLock(ctx, entry); err != nil {
				return fmt.Errorf("failed to save credit entry: %w", err)
			}
			result.TotalConsumed = result.TotalConsumed.Add(take)
			result.EntryIDs = append(result.EntryIDs, entry.ID)
			remaining = remaining.Sub(take)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("credit consumed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("amount", amount.String()),
		zap.Int("entries", len(result.EntryIDs)),
	)
	return result, nil
}

// Balance returns a student's total usable credit across active entries
func (s *CreditService) Balance(ctx context.Context, tenantID, studentID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.creditRepo.SumRemainingByStudent(ctx, tenantID, studentID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum credit balance: %w", err)
	}
	return balance, nil
}

// Refund closes a credit entry and returns the refunded amount
func (s *CreditService) Refund(ctx context.Context, tenantID, entryID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit", "refund")
	defer span.End()

	var refunded decimal.Decimal
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.CreditRepo().FindByIDForTenant(ctx, tenantID, entryID)
		if err != nil {
			return fmt.Errorf("failed to load credit entry: %w", err)
		}
		if entry == nil {
			return shared.NewDomainError("CREDIT_NOT_FOUND", "Credit entry not found")
		}

		refunded, err = entry.Refund()
		if err != nil {
			return err
		}
		return repos.CreditRepo().SaveWithLock(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, err
	}

	s.logger.Info("credit refunded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", entryID.String()),
		zap.String("amount", refunded.String()),
	)
	return refunded, nil
}
