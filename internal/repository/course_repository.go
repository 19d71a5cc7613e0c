//go:generate mockery --name CourseRepository --output ./mocks --outpkg mocks --case=underscore
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

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *model.Course) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) (*model.Course, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, tenantID, courseID uuid.UUID, status model.CourseStatus) error
	AddInstructor(ctx context.Context, tx *gorm.DB, tenantID, courseID, userID uuid.UUID) error
	IsInstructor(ctx context.Context, db *gorm.DB, tenantID, courseID, userID uuid.UUID) (bool, error)
}

type gormCourseRepository struct{}

func NewGormCourseRepository() CourseRepository {
	return &gormCourseRepository{}
}

func (r *gormCourseRepository) Create(ctx context.Context, tx *gorm.DB, course *model.Course) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(course)
	if result.Error != nil {
		logger.Error("Error creating course in DB", "error", result.Error, "tenant_id", course.TenantID.String())
		return fmt.Errorf("gormCourseRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormCourseRepository) FindByID(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) (*model.Course, error) {
	var course model.Course
	result := db.WithContext(ctx).Where("tenant_id = ? AND course_id = ?", tenantID, courseID).First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormCourseRepository.FindByID: %w", result.Error)
	}
	return &course, nil
}

func (r *gormCourseRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, tenantID, courseID uuid.UUID, status model.CourseStatus) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.Course{}).
		Where("tenant_id = ? AND course_id = ?", tenantID, courseID).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Error updating course status in DB", "error", result.Error, "course_id", courseID.String())
		return fmt.Errorf("gormCourseRepository.UpdateStatus: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCourseRepository) AddInstructor(ctx context.Context, tx *gorm.DB, tenantID, courseID, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	rel := &model.CourseInstructor{CourseID: courseID, UserID: userID, TenantID: tenantID}
	result := tx.WithContext(ctx).Create(rel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict // 既に講師として登録済み
		}
		logger.Error("Error adding course instructor in DB", "error", result.Error, "course_id", courseID.String(), "user_id", userID.String())
		return fmt.Errorf("gormCourseRepository.AddInstructor: %w", result.Error)
	}
	return nil
}

func (r *gormCourseRepository) IsInstructor(ctx context.Context, db *gorm.DB, tenantID, courseID, userID uuid.UUID) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.CourseInstructor{}).
		Where("tenant_id = ? AND course_id = ? AND user_id = ?", tenantID, courseID, userID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormCourseRepository.IsInstructor: %w", result.Error)
	}
	return count > 0, nil
}
