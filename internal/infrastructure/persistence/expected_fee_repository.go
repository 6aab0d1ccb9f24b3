package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/billing"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpectedFeeRepository implements ExpectedFeeRepository using GORM
type GormExpectedFeeRepository struct {
	db *gorm.DB
}

// NewGormExpectedFeeRepository creates a new GormExpectedFeeRepository
func NewGormExpectedFeeRepository(db *gorm.DB) *GormExpectedFeeRepository {
	return &GormExpectedFeeRepository{db: db}
}

// FindByIDForTenant finds an expected fee by ID for a tenant
func (r *GormExpectedFeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.ExpectedFee, error) {
	var model models.ExpectedFeeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTerm finds all active fee lines applicable within a term.
// Per-student applicability is resolved by the domain, so the query
// returns unscoped, class-scoped and per-student lines alike.
func (r *GormExpectedFeeRepository) FindByTerm(ctx context.Context, tenantID, termID uuid.UUID) ([]billing.ExpectedFee, error) {
	var feeModels []models.ExpectedFeeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND term_id = ? AND active = ?", tenantID, termID, true).
		Order("created_at ASC").
		Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]billing.ExpectedFee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// FindAllForTenant finds expected fees for a tenant with filtering
func (r *GormExpectedFeeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ExpectedFeeFilter) ([]billing.ExpectedFee, error) {
	var feeModels []models.ExpectedFeeModel
	query := r.db.WithContext(ctx).Model(&models.ExpectedFeeModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFeeFilter(query, filter)

	if err := query.Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]billing.ExpectedFee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// FindCarryForward finds carry-forward lines in toTerm that originate from
// fromTerm, optionally narrowed to one student
func (r *GormExpectedFeeRepository) FindCarryForward(ctx context.Context, tenantID, fromTermID, toTermID uuid.UUID, studentID *uuid.UUID) ([]billing.ExpectedFee, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND term_id = ? AND is_carry_forward = ? AND original_term_id = ?",
			tenantID, toTermID, true, fromTermID)
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	var feeModels []models.ExpectedFeeModel
	if err := query.Order("created_at ASC").Find(&feeModels).Error; err != nil {
		return nil, err
	}
	fees := make([]billing.ExpectedFee, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees, nil
}

// Save creates or updates an expected fee
func (r *GormExpectedFeeRepository) Save(ctx context.Context, fee *billing.ExpectedFee) error {
	model := models.ExpectedFeeModelFromDomain(fee)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll persists a batch of expected fees in one call
func (r *GormExpectedFeeRepository) SaveAll(ctx context.Context, fees []*billing.ExpectedFee) error {
	if len(fees) == 0 {
		return nil
	}
	feeModels := make([]*models.ExpectedFeeModel, len(fees))
	for i, fee := range fees {
		feeModels[i] = models.ExpectedFeeModelFromDomain(fee)
	}
	return r.db.WithContext(ctx).Create(feeModels).Error
}

// DeleteForTenant hard deletes an expected fee. Only system-generated
// carry-forward lines are ever deleted, when a carry-forward run is reversed.
func (r *GormExpectedFeeRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ExpectedFeeModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("FEE_NOT_FOUND", "Expected fee does not exist")
	}
	return nil
}

// applyFeeFilter applies filter options to the query
func (r *GormExpectedFeeRepository) applyFeeFilter(query *gorm.DB, filter billing.ExpectedFeeFilter) *gorm.DB {
	if filter.TermID != nil {
		query = query.Where("term_id = ?", *filter.TermID)
	}
	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IsOptional != nil {
		query = query.Where("is_optional = ?", *filter.IsOptional)
	}
	if filter.IsCarryForward != nil {
		query = query.Where("is_carry_forward = ?", *filter.IsCarryForward)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, ExpectedFeeSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}
