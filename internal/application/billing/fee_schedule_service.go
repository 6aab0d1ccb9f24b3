package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/domain/shared/valueobject"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeeScheduleService maintains the expected-fee lines a term bills
// against. Carry-forward lines are owned by CarryForwardService and can
// not be created or removed here.
type FeeScheduleService struct {
	scope    TransactionScope
	feeRepo  billing.ExpectedFeeRepository
	termRepo academic.TermRepository
	logger   *zap.Logger
}

// NewFeeScheduleService creates a new FeeScheduleService
func NewFeeScheduleService(
	scope TransactionScope,
	feeRepo billing.ExpectedFeeRepository,
	termRepo academic.TermRepository,
	logger *zap.Logger,
) *FeeScheduleService {
	return &FeeScheduleService{
		scope:    scope,
		feeRepo:  feeRepo,
		termRepo: termRepo,
		logger:   logger,
	}
}

// CreateFeeRequest represents a request to add an expected-fee line
type CreateFeeRequest struct {
	TenantID   uuid.UUID
	TermID     uuid.UUID
	ClassID    *uuid.UUID
	Name       string
	Category   billing.FeeCategory
	Amount     decimal.Decimal
	IsOptional bool
	Frequency  billing.FeeFrequency
	DueDate    *time.Time
}

// Create adds an expected-fee line to a term's schedule. Completed terms
// are frozen; their expected set is already snapshotted and carried
// forward.
func (s *FeeScheduleService) Create(ctx context.Context, req CreateFeeRequest) (*billing.ExpectedFee, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_schedule", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrTermID, req.TermID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	term, err := s.termRepo.FindByIDForTenant(ctx, req.TenantID, req.TermID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load term: %w", err)
	}
	if term == nil {
		err := shared.NewDomainError("TERM_NOT_FOUND", "Term not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if term.IsCompleted {
		err := shared.NewDomainError("STATE_CONFLICT", "Cannot add fees to a completed term")
		telemetry.RecordError(span, err)
		return nil, err
	}

	fee, err := billing.NewExpectedFee(
		req.TenantID, req.TermID, req.ClassID, req.Name, req.Category,
		valueobject.NewMoneyUGX(req.Amount), req.IsOptional, req.Frequency, req.DueDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.FeeRepo().Save(ctx, fee)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save fee: %w", err)
	}

	s.logger.Info("expected fee created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("term_id", req.TermID.String()),
		zap.String("name", req.Name),
		zap.String("amount", req.Amount.String()),
	)
	return fee, nil
}

// Get returns an expected fee by ID
func (s *FeeScheduleService) Get(ctx context.Context, tenantID, feeID uuid.UUID) (*billing.ExpectedFee, error) {
	fee, err := s.feeRepo.FindByIDForTenant(ctx, tenantID, feeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee: %w", err)
	}
	if fee == nil {
		return nil, shared.NewDomainError("FEE_NOT_FOUND", "Expected fee not found")
	}
	return fee, nil
}

// List returns expected fees matching the filter
func (s *FeeScheduleService) List(ctx context.Context, tenantID uuid.UUID, filter billing.ExpectedFeeFilter) ([]billing.ExpectedFee, error) {
	fees, err := s.feeRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list fees: %w", err)
	}
	return fees, nil
}

// Deactivate retires an expected-fee line from future status computations.
// Carry-forward lines are refused; those are removed only by reversing
// the carry-forward run that created them.
func (s *FeeScheduleService) Deactivate(ctx context.Context, tenantID, feeID uuid.UUID) (*billing.ExpectedFee, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_schedule", "deactivate")
	defer span.End()

	var fee *billing.ExpectedFee
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		fee, err = repos.FeeRepo().FindByIDForTenant(ctx, tenantID, feeID)
		if err != nil {
			return fmt.Errorf("failed to load fee: %w", err)
		}
		if fee == nil {
			return shared.NewDomainError("FEE_NOT_FOUND", "Expected fee not found")
		}
		if fee.IsCarryForward {
			return shared.NewDomainError("STATE_CONFLICT", "Carry-forward lines are removed by reversing the carry-forward run")
		}
		if !fee.Active {
			return shared.NewDomainError("STATE_CONFLICT", "Expected fee is already inactive")
		}
		fee.Deactivate()
		return repos.FeeRepo().Save(ctx, fee)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("expected fee deactivated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("fee_id", feeID.String()),
	)
	return fee, nil
}
