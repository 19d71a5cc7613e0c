//go:generate mockery --name QuizRepository --output ./mocks --outpkg mocks --case=underscore
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

type QuizRepository interface {
	CreateAttempt(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt) error
	// LatestAttempt は completed_at が最新の提出を返します (表示・再導出の正)
	LatestAttempt(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) (*model.QuizAttempt, error)
}

type gormQuizRepository struct{}

func NewGormQuizRepository() QuizRepository {
	return &gormQuizRepository{}
}

func (r *gormQuizRepository) CreateAttempt(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		logger.Error("Error creating quiz attempt in DB",
			"error", result.Error,
			"user_id", attempt.UserID.String(),
			"lesson_id", attempt.LessonID.String(),
		)
		return fmt.Errorf("gormQuizRepository.CreateAttempt: %w", result.Error)
	}
	return nil
}

func (r *gormQuizRepository) LatestAttempt(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND lesson_id = ?", tenantID, userID, lessonID).
		Order("completed_at DESC").
		First(&attempt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormQuizRepository.LatestAttempt: %w", result.Error)
	}
	return &attempt, nil
}
