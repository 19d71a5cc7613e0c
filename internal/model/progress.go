// internal/model/progress.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// LessonProgress は学習者ごとのレッスン完了状態です。
// (tenant, user, lesson) につき高々1行で、完了状態の唯一の真実の源。
// QUIZ/CODING レッスンの行は synchronizer だけが書き込み、
// VIDEO レッスンは学習者の明示的な完了操作だけが書き込む。
type LessonProgress struct {
	ProgressID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_progress_user_lesson"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_progress_user_lesson"`
	LessonID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_progress_user_lesson"`
	Completed  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// LessonState は配信用にロック状態を付与したレッスンです
type LessonState struct {
	Lesson    *Lesson `json:"lesson"`
	Completed bool    `json:"completed"`
	IsLocked  bool    `json:"is_locked"`
}

// ChapterState は配信用の章とレッスンの集合です
type ChapterState struct {
	Chapter *Chapter      `json:"chapter"`
	Lessons []LessonState `json:"lessons"`
}

// CourseContentResponse はコンテンツ取得APIのレスポンスDTO
type CourseContentResponse struct {
	CourseID          uuid.UUID      `json:"course_id"`
	Chapters          []ChapterState `json:"chapters"`
	CompletionPercent int            `json:"completion_percent"`
}
