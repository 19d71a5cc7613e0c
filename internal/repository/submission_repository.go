//go:generate mockery --name SubmissionRepository --output ./mocks --outpkg mocks --case=underscore
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

type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *model.CodingSubmission) error
	// CountByUserAndLesson は採番用。Create と同一トランザクションで呼ぶこと。
	CountByUserAndLesson(ctx context.Context, tx *gorm.DB, tenantID, userID, lessonID uuid.UUID) (int64, error)
	UpdateVerdict(ctx context.Context, tx *gorm.DB, tenantID, submissionID uuid.UUID, status model.JudgeStatus, passed bool) error
	// ExistsPassed は合格済み提出が1件でも残っているかを返します (完了再導出用)
	ExistsPassed(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) (bool, error)
	ListByUserAndLesson(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) ([]*model.CodingSubmission, error)
}

type gormSubmissionRepository struct{}

func NewGormSubmissionRepository() SubmissionRepository {
	return &gormSubmissionRepository{}
}

func (r *gormSubmissionRepository) Create(ctx context.Context, tx *gorm.DB, submission *model.CodingSubmission) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			// 採番の競合。呼び出し元が操作全体をリトライする。
			return model.ErrConflict
		}
		logger.Error("Error creating coding submission in DB",
			"error", result.Error,
			"user_id", submission.UserID.String(),
			"lesson_id", submission.LessonID.String(),
		)
		return fmt.Errorf("gormSubmissionRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormSubmissionRepository) CountByUserAndLesson(ctx context.Context, tx *gorm.DB, tenantID, userID, lessonID uuid.UUID) (int64, error) {
	var count int64
	result := tx.WithContext(ctx).Model(&model.CodingSubmission{}).
		Where("tenant_id = ? AND user_id = ? AND lesson_id = ?", tenantID, userID, lessonID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormSubmissionRepository.CountByUserAndLesson: %w", result.Error)
	}
	return count, nil
}

func (r *gormSubmissionRepository) UpdateVerdict(ctx context.Context, tx *gorm.DB, tenantID, submissionID uuid.UUID, status model.JudgeStatus, passed bool) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.CodingSubmission{}).
		Where("tenant_id = ? AND submission_id = ?", tenantID, submissionID).
		Updates(map[string]interface{}{"status": status, "passed": passed})
	if result.Error != nil {
		logger.Error("Error updating submission verdict in DB",
			"error", result.Error,
			"submission_id", submissionID.String(),
		)
		return fmt.Errorf("gormSubmissionRepository.UpdateVerdict: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormSubmissionRepository) ExistsPassed(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.CodingSubmission{}).
		Where("tenant_id = ? AND user_id = ? AND lesson_id = ? AND passed = ?", tenantID, userID, lessonID, true).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("gormSubmissionRepository.ExistsPassed: %w", result.Error)
	}
	return count > 0, nil
}

func (r *gormSubmissionRepository) ListByUserAndLesson(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) ([]*model.CodingSubmission, error) {
	var submissions []*model.CodingSubmission
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND lesson_id = ?", tenantID, userID, lessonID).
		Order("attempt_number ASC").
		Find(&submissions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormSubmissionRepository.ListByUserAndLesson: %w", result.Error)
	}
	return submissions, nil
}
