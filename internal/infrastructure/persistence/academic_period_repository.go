package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAcademicPeriodRepository implements AcademicPeriodRepository using GORM
type GormAcademicPeriodRepository struct {
	db *gorm.DB
}

// NewGormAcademicPeriodRepository creates a new GormAcademicPeriodRepository
func NewGormAcademicPeriodRepository(db *gorm.DB) *GormAcademicPeriodRepository {
	return &GormAcademicPeriodRepository{db: db}
}

// FindByIDForTenant finds an academic period by ID for a tenant
func (r *GormAcademicPeriodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*academic.AcademicPeriod, error) {
	var model models.AcademicPeriodModel
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

// FindCurrent finds the tenant's current academic period
func (r *GormAcademicPeriodRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*academic.AcademicPeriod, error) {
	var model models.AcademicPeriodModel
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

// Save creates or updates an academic period
func (r *GormAcademicPeriodRepository) Save(ctx context.Context, period *academic.AcademicPeriod) error {
	model := models.AcademicPeriodModelFromDomain(period)
	return r.db.WithContext(ctx).Save(model).Error
}
