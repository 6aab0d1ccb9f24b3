package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentAllocationRepository implements PaymentAllocationRepository
// using GORM. Allocation rows are insert-only.
type GormPaymentAllocationRepository struct {
	db *gorm.DB
}

// NewGormPaymentAllocationRepository creates a new GormPaymentAllocationRepository
func NewGormPaymentAllocationRepository(db *gorm.DB) *GormPaymentAllocationRepository {
	return &GormPaymentAllocationRepository{db: db}
}

// FindByPayment finds every allocation row for a payment
func (r *GormPaymentAllocationRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]billing.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// FindAllForTenant finds allocations for a tenant with filtering
func (r *GormPaymentAllocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentAllocationFilter) ([]billing.PaymentAllocation, error) {
	var allocationModels []models.PaymentAllocationModel
	query := r.db.WithContext(ctx).Model(&models.PaymentAllocationModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyAllocationFilter(query, filter)

	if err := query.Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	allocations := make([]billing.PaymentAllocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations, nil
}

// Save creates an allocation row
func (r *GormPaymentAllocationRepository) Save(ctx context.Context, allocation *billing.PaymentAllocation) error {
	model := models.PaymentAllocationModelFromDomain(allocation)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveAll persists a batch of allocation rows in one call
func (r *GormPaymentAllocationRepository) SaveAll(ctx context.Context, allocations []*billing.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	allocationModels := make([]*models.PaymentAllocationModel, len(allocations))
	for i, allocation := range allocations {
		allocationModels[i] = models.PaymentAllocationModelFromDomain(allocation)
	}
	return r.db.WithContext(ctx).Create(allocationModels).Error
}

// SumByPayment sums allocated amounts across a payment's rows
func (r *GormPaymentAllocationRepository) SumByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("COALESCE(SUM(allocated_amount), 0) as total").
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByStudentAndTerm sums a student's allocations into a term
func (r *GormPaymentAllocationRepository) SumByStudentAndTerm(ctx context.Context, tenantID, studentID, termID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("COALESCE(SUM(allocated_amount), 0) as total").
		Where("tenant_id = ? AND student_id = ? AND term_id = ?", tenantID, studentID, termID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByTerm sums all allocations into a term across students
func (r *GormPaymentAllocationRepository) SumByTerm(ctx context.Context, tenantID, termID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("COALESCE(SUM(allocated_amount), 0) as total").
		Where("tenant_id = ? AND term_id = ?", tenantID, termID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyAllocationFilter applies filter options to the query
func (r *GormPaymentAllocationRepository) applyAllocationFilter(query *gorm.DB, filter billing.PaymentAllocationFilter) *gorm.DB {
	if filter.PaymentID != nil {
		query = query.Where("payment_id = ?", *filter.PaymentID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.TermID != nil {
		query = query.Where("term_id = ?", *filter.TermID)
	}
	if filter.Reason != nil {
		query = query.Where("reason = ?", *filter.Reason)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, AllocationSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}
