//go:generate mockery --name LessonRepository --output ./mocks --outpkg mocks --case=underscore
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

type LessonRepository interface {
	CreateChapter(ctx context.Context, tx *gorm.DB, chapter *model.Chapter) error
	FindChapter(ctx context.Context, db *gorm.DB, tenantID, chapterID uuid.UUID) (*model.Chapter, error)
	MaxChapterPosition(ctx context.Context, tx *gorm.DB, tenantID, courseID uuid.UUID) (int, error)

	CreateLesson(ctx context.Context, tx *gorm.DB, lesson *model.Lesson) error
	FindLesson(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, tx *gorm.DB, tenantID, lessonID uuid.UUID) error
	MaxLessonPosition(ctx context.Context, tx *gorm.DB, tenantID, chapterID uuid.UUID) (int, error)
	// ShiftLessonsAfterDelete は removedPos より後のレッスンを1つ前に詰め、連番を回復します
	ShiftLessonsAfterDelete(ctx context.Context, tx *gorm.DB, tenantID, chapterID uuid.UUID, removedPos int) error
	MoveLesson(ctx context.Context, tx *gorm.DB, tenantID, chapterID, lessonID uuid.UUID, oldPos, newPos int) error

	// FindChaptersWithLessons は章をposition順、各章のレッスンをposition順で返します
	FindChaptersWithLessons(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) ([]*model.Chapter, error)
	CountLessonsByCourse(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) (int64, error)

	CreateQuestion(ctx context.Context, tx *gorm.DB, question *model.QuizQuestion) error
	FindQuestions(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) ([]*model.QuizQuestion, error)
	CountQuestions(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) (int64, error)
	// FindQuizLessonIDs はコース内の QUIZ レッスンのIDを返します (公開前検証用)
	FindQuizLessonIDs(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) ([]uuid.UUID, error)

	CreateExercise(ctx context.Context, tx *gorm.DB, exercise *model.CodingExercise) error
	FindExercise(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) (*model.CodingExercise, error)
}

type gormLessonRepository struct{}

func NewGormLessonRepository() LessonRepository {
	return &gormLessonRepository{}
}

func (r *gormLessonRepository) CreateChapter(ctx context.Context, tx *gorm.DB, chapter *model.Chapter) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(chapter)
	if result.Error != nil {
		logger.Error("Error creating chapter in DB", "error", result.Error, "course_id", chapter.CourseID.String())
		return fmt.Errorf("gormLessonRepository.CreateChapter: %w", result.Error)
	}
	return nil
}

func (r *gormLessonRepository) FindChapter(ctx context.Context, db *gorm.DB, tenantID, chapterID uuid.UUID) (*model.Chapter, error) {
	var chapter model.Chapter
	result := db.WithContext(ctx).Where("tenant_id = ? AND chapter_id = ?", tenantID, chapterID).First(&chapter)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormLessonRepository.FindChapter: %w", result.Error)
	}
	return &chapter, nil
}

func (r *gormLessonRepository) MaxChapterPosition(ctx context.Context, tx *gorm.DB, tenantID, courseID uuid.UUID) (int, error) {
	var max *int
	result := tx.WithContext(ctx).Model(&model.Chapter{}).
		Where("tenant_id = ? AND course_id = ?", tenantID, courseID).
		Select("MAX(position)").Scan(&max)
	if result.Error != nil {
		return 0, fmt.Errorf("gormLessonRepository.MaxChapterPosition: %w", result.Error)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *gormLessonRepository) CreateLesson(ctx context.Context, tx *gorm.DB, lesson *model.Lesson) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(lesson)
	if result.Error != nil {
		logger.Error("Error creating lesson in DB", "error", result.Error, "chapter_id", lesson.ChapterID.String())
		return fmt.Errorf("gormLessonRepository.CreateLesson: %w", result.Error)
	}
	return nil
}

func (r *gormLessonRepository) FindLesson(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) (*model.Lesson, error) {
	var lesson model.Lesson
	result := db.WithContext(ctx).Where("tenant_id = ? AND lesson_id = ?", tenantID, lessonID).First(&lesson)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormLessonRepository.FindLesson: %w", result.Error)
	}
	return &lesson, nil
}

func (r *gormLessonRepository) DeleteLesson(ctx context.Context, tx *gorm.DB, tenantID, lessonID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.Lesson{}, "lesson_id = ?", lessonID)
	if result.Error != nil {
		logger.Error("Error deleting lesson in DB", "error", result.Error, "lesson_id", lessonID.String())
		return fmt.Errorf("gormLessonRepository.DeleteLesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormLessonRepository) MaxLessonPosition(ctx context.Context, tx *gorm.DB, tenantID, chapterID uuid.UUID) (int, error) {
	var max *int
	result := tx.WithContext(ctx).Model(&model.Lesson{}).
		Where("tenant_id = ? AND chapter_id = ?", tenantID, chapterID).
		Select("MAX(position)").Scan(&max)
	if result.Error != nil {
		return 0, fmt.Errorf("gormLessonRepository.MaxLessonPosition: %w", result.Error)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *gormLessonRepository) ShiftLessonsAfterDelete(ctx context.Context, tx *gorm.DB, tenantID, chapterID uuid.UUID, removedPos int) error {
	result := tx.WithContext(ctx).Model(&model.Lesson{}).
		Where("tenant_id = ? AND chapter_id = ? AND position > ?", tenantID, chapterID, removedPos).
		UpdateColumn("position", gorm.Expr("position - 1"))
	if result.Error != nil {
		return fmt.Errorf("gormLessonRepository.ShiftLessonsAfterDelete: %w", result.Error)
	}
	return nil
}

func (r *gormLessonRepository) MoveLesson(ctx context.Context, tx *gorm.DB, tenantID, chapterID, lessonID uuid.UUID, oldPos, newPos int) error {
	// 対象レッスンを動かし、間のレッスンを1つずつずらす。連番は維持される。
	if oldPos == newPos {
		return nil
	}
	var result *gorm.DB
	if oldPos < newPos {
		result = tx.WithContext(ctx).Model(&model.Lesson{}).
			Where("tenant_id = ? AND chapter_id = ? AND position > ? AND position <= ?", tenantID, chapterID, oldPos, newPos).
			UpdateColumn("position", gorm.Expr("position - 1"))
	} else {
		result = tx.WithContext(ctx).Model(&model.Lesson{}).
			Where("tenant_id = ? AND chapter_id = ? AND position >= ? AND position < ?", tenantID, chapterID, newPos, oldPos).
			UpdateColumn("position", gorm.Expr("position + 1"))
	}
	if result.Error != nil {
		return fmt.Errorf("gormLessonRepository.MoveLesson (shift): %w", result.Error)
	}
	result = tx.WithContext(ctx).Model(&model.Lesson{}).
		Where("tenant_id = ? AND lesson_id = ?", tenantID, lessonID).
		UpdateColumn("position", newPos)
	if result.Error != nil {
		return fmt.Errorf("gormLessonRepository.MoveLesson (set): %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormLessonRepository) FindChaptersWithLessons(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	result := db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC")
		}).
		Where("tenant_id = ? AND course_id = ?", tenantID, courseID).
		Order("chapters.position ASC").
		Find(&chapters)
	if result.Error != nil {
		return nil, fmt.Errorf("gormLessonRepository.FindChaptersWithLessons: %w", result.Error)
	}
	return chapters, nil
}

func (r *gormLessonRepository) CountLessonsByCourse(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Lesson{}).
		Joins("JOIN chapters ON chapters.chapter_id = lessons.chapter_id").
		Where("lessons.tenant_id = ? AND chapters.course_id = ?", tenantID, courseID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormLessonRepository.CountLessonsByCourse: %w", result.Error)
	}
	return count, nil
}

func (r *gormLessonRepository) CreateQuestion(ctx context.Context, tx *gorm.DB, question *model.QuizQuestion) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(question)
	if result.Error != nil {
		logger.Error("Error creating quiz question in DB", "error", result.Error, "lesson_id", question.LessonID.String())
		return fmt.Errorf("gormLessonRepository.CreateQuestion: %w", result.Error)
	}
	return nil
}

func (r *gormLessonRepository) FindQuestions(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) ([]*model.QuizQuestion, error) {
	var questions []*model.QuizQuestion
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND lesson_id = ?", tenantID, lessonID).
		Order("position ASC").
		Find(&questions)
	if result.Error != nil {
		return nil, fmt.Errorf("gormLessonRepository.FindQuestions: %w", result.Error)
	}
	return questions, nil
}

func (r *gormLessonRepository) CountQuestions(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.QuizQuestion{}).
		Where("tenant_id = ? AND lesson_id = ?", tenantID, lessonID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gormLessonRepository.CountQuestions: %w", result.Error)
	}
	return count, nil
}

func (r *gormLessonRepository) FindQuizLessonIDs(ctx context.Context, db *gorm.DB, tenantID, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := db.WithContext(ctx).Model(&model.Lesson{}).
		Joins("JOIN chapters ON chapters.chapter_id = lessons.chapter_id").
		Where("lessons.tenant_id = ? AND chapters.course_id = ? AND lessons.type = ?", tenantID, courseID, model.LessonQuiz).
		Pluck("lessons.lesson_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("gormLessonRepository.FindQuizLessonIDs: %w", result.Error)
	}
	return ids, nil
}

func (r *gormLessonRepository) CreateExercise(ctx context.Context, tx *gorm.DB, exercise *model.CodingExercise) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Create(exercise)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return model.ErrConflict // レッスンには課題を1つしか持てない
		}
		logger.Error("Error creating coding exercise in DB", "error", result.Error, "lesson_id", exercise.LessonID.String())
		return fmt.Errorf("gormLessonRepository.CreateExercise: %w", result.Error)
	}
	return nil
}

func (r *gormLessonRepository) FindExercise(ctx context.Context, db *gorm.DB, tenantID, lessonID uuid.UUID) (*model.CodingExercise, error) {
	var exercise model.CodingExercise
	result := db.WithContext(ctx).Where("tenant_id = ? AND lesson_id = ?", tenantID, lessonID).First(&exercise)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("gormLessonRepository.FindExercise: %w", result.Error)
	}
	return &exercise, nil
}
