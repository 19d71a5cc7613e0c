//go:generate mockery --name TenantRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, tx *gorm.DB, tenant *model.Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (*model.Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.Tenant, error)
	UpdateSlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) error
}

type gormTenantRepository struct{}

func NewGormTenantRepository() TenantRepository {
	return &gormTenantRepository{}
}

func (r *gormTenantRepository) Create(ctx context.Context, tx *gorm.DB, tenant *model.Tenant) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict // slug 重複
		}
		logger.Error("Error creating tenant in DB", "error", result.Error, "slug", tenant.Slug)
		return fmt.Errorf("gormTenantRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormTenantRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	result := db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormTenantRepository.FindByID: %w", result.Error)
	}
	return &tenant, nil
}

func (r *gormTenantRepository) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	result := db.WithContext(ctx).Where("slug = ?", slug).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrTenantNotFound
		}
		return nil, fmt.Errorf("gormTenantRepository.FindBySlug: %w", result.Error)
	}
	return &tenant, nil
}

func (r *gormTenantRepository) UpdateSlug(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, slug string) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.Tenant{}).Where("tenant_id = ?", tenantID).Update("slug", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error updating tenant slug in DB", "error", result.Error, "tenant_id", tenantID.String())
		return fmt.Errorf("gormTenantRepository.UpdateSlug: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
