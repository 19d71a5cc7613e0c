//go:generate mockery --name GrantRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GrantRepository interface {
	// Upsert は (course, user) の権限委譲を作成または置き換えます
	Upsert(ctx context.Context, tx *gorm.DB, grant *model.PermissionGrant) error
	// FindByCourseAndUser はリクエスト毎に呼ばれる。キャッシュしないこと
	// (失効が次の認可判定に即時反映されるのが保証事項)。
	FindByCourseAndUser(ctx context.Context, db *gorm.DB, tenantID, courseID, userID uuid.UUID) (*model.PermissionGrant, error)
	Delete(ctx context.Context, tx *gorm.DB, tenantID, courseID, userID uuid.UUID) error
}

type gormGrantRepository struct{}

func NewGormGrantRepository() GrantRepository {
	return &gormGrantRepository{}
}

func (r *gormGrantRepository) Upsert(ctx context.Context, tx *gorm.DB, grant *model.PermissionGrant) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "course_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions", "updated_at"}),
	}).Create(grant)
	if result.Error != nil {
		logger.Error("Error upserting permission grant in DB",
			"error", result.Error,
			"course_id", grant.CourseID.String(),
			"user_id", grant.UserID.String(),
		)
		return fmt.Errorf("gormGrantRepository.Upsert: %w", result.Error)
	}
	return nil
}

func (r *gormGrantRepository) FindByCourseAndUser(ctx context.Context, db *gorm.DB, tenantID, courseID, userID uuid.UUID) (*model.PermissionGrant, error) {
	var grant model.PermissionGrant
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND course_id = ? AND user_id = ?", tenantID, courseID, userID).
		First(&grant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormGrantRepository.FindByCourseAndUser: %w", result.Error)
	}
	return &grant, nil
}

func (r *gormGrantRepository) Delete(ctx context.Context, tx *gorm.DB, tenantID, courseID, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Where("tenant_id = ? AND course_id = ? AND user_id = ?", tenantID, courseID, userID).
		Delete(&model.PermissionGrant{})
	if result.Error != nil {
		logger.Error("Error deleting permission grant in DB",
			"error", result.Error,
			"course_id", courseID.String(),
			"user_id", userID.String(),
		)
		return fmt.Errorf("gormGrantRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
