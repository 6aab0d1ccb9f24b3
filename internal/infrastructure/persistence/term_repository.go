package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/domain/shared"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// academicOrder sorts terms chronologically across academic periods.
const academicOrder = "period_start_date ASC, term_number ASC, start_date ASC"

// GormTermRepository implements TermRepository using GORM
type GormTermRepository struct {
	db *gorm.DB
}

// NewGormTermRepository creates a new GormTermRepository
func NewGormTermRepository(db *gorm.DB) *GormTermRepository {
	return &GormTermRepository{db: db}
}

// FindByIDForTenant finds a term by ID for a specific tenant.
// A missing term is reported as a nil entity with no error.
func (r *GormTermRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*academic.Term, error) {
	var model models.TermModel
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

// FindAllForTenant finds all terms for a tenant in academic order
func (r *GormTermRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter academic.TermFilter) ([]academic.Term, error) {
	var termModels []models.TermModel
	query := r.db.WithContext(ctx).Model(&models.TermModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyTermFilter(query, filter)

	if err := query.Find(&termModels).Error; err != nil {
		return nil, err
	}
	terms := make([]academic.Term, len(termModels))
	for i, model := range termModels {
		terms[i] = *model.ToDomain()
	}
	return terms, nil
}

// FindCurrent finds the tenant's current term
func (r *GormTermRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*academic.Term, error) {
	var model models.TermModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_current = ?", tenantID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a term
func (r *GormTermRepository) Save(ctx context.Context, term *academic.Term) error {
	model := models.TermModelFromDomain(term)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTermRepository) SaveWithLock(ctx context.Context, term *academic.Term) error {
	model := models.TermModelFromDomain(term)
	result := r.db.WithContext(ctx).
		Model(&models.TermModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"is_current":   model.IsCurrent,
			"is_completed": model.IsCompleted,
			"completed_at": model.CompletedAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Term was modified by another transaction")
	}
	return nil
}

// applyTermFilter applies filter options to the query
func (r *GormTermRepository) applyTermFilter(query *gorm.DB, filter academic.TermFilter) *gorm.DB {
	if filter.AcademicPeriodID != nil {
		query = query.Where("academic_period_id = ?", *filter.AcademicPeriodID)
	}
	if filter.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filter.IsCompleted)
	}
	if filter.IsCurrent != nil {
		query = query.Where("is_current = ?", *filter.IsCurrent)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, TermSortFields, "term_number")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(academicOrder)
	}

	return query
}
