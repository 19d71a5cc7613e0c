//go:generate mockery --name ProgressRepository --output ./mocks --outpkg mocks --case=underscore
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

type ProgressRepository interface {
	// Upsert は (tenant, user, lesson) のユニーク制約をキーに completed を書き込みます。
	// 行がなければ作成する (遅延初期化もこの経路)。
	Upsert(ctx context.Context, tx *gorm.DB, progress *model.LessonProgress) error
	Find(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) (*model.LessonProgress, error)
	// MapByUser は学習者の完了状態を lessonID -> completed のマップで返します。
	// 行が無いレッスンはマップに含まれない (未完了扱い)。
	MapByUser(ctx context.Context, db *gorm.DB, tenantID, userID uuid.UUID) (map[uuid.UUID]bool, error)
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Upsert(ctx context.Context, tx *gorm.DB, progress *model.LessonProgress) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(progress)
	if result.Error != nil {
		logger.Error("Error upserting lesson progress in DB",
			"error", result.Error,
			"user_id", progress.UserID.String(),
			"lesson_id", progress.LessonID.String(),
		)
		return fmt.Errorf("gormProgressRepository.Upsert: %w", result.Error)
	}
	return nil
}

func (r *gormProgressRepository) Find(ctx context.Context, db *gorm.DB, tenantID, userID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND lesson_id = ?", tenantID, userID, lessonID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormProgressRepository.Find: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) MapByUser(ctx context.Context, db *gorm.DB, tenantID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []model.LessonProgress
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("gormProgressRepository.MapByUser: %w", result.Error)
	}
	m := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		m[row.LessonID] = row.Completed
	}
	return m, nil
}
