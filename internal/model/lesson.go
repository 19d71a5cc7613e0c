// internal/model/lesson.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LessonType string

const (
	LessonVideo  LessonType = "video"
	LessonQuiz   LessonType = "quiz"
	LessonCoding LessonType = "coding"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVideo, LessonQuiz, LessonCoding:
		return true
	}
	return false
}

// Chapter はコース内の章を表します。
// Position は 1 始まりで、同一コース内で連番 (削除時に振り直し)。
type Chapter struct {
	ChapterID uuid.UUID `gorm:"type:uuid;primaryKey" json:"chapter_id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title     string    `gorm:"not null" json:"title"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 関連 (Preload用)
	Lessons []Lesson `gorm:"foreignKey:ChapterID;references:ChapterID" json:"-"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// Lesson は章内のレッスンを表します。Position の規則は Chapter と同じ。
type Lesson struct {
	LessonID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"lesson_id"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	ChapterID uuid.UUID  `gorm:"type:uuid;not null;index" json:"chapter_id"`
	Title     string     `gorm:"not null" json:"title"`
	Type      LessonType `gorm:"type:varchar(10);not null" json:"type"`
	Position  int        `gorm:"not null" json:"position"`
	VideoURL  *string    `json:"video_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// 関連 (Preload用)。レッスン種別ごとに排他的に使われる。
	Questions []QuizQuestion  `gorm:"foreignKey:LessonID;references:LessonID" json:"-"`
	Exercise  *CodingExercise `gorm:"foreignKey:LessonID;references:LessonID" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// QuizQuestion はクイズレッスンの設問です。Choices は選択肢文字列の配列。
type QuizQuestion struct {
	QuestionID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"question_id"`
	TenantID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	LessonID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Prompt        string         `gorm:"not null" json:"prompt"`
	Choices       datatypes.JSON `gorm:"not null" json:"choices"`
	CorrectChoice int            `gorm:"not null" json:"-"`
	Position      int            `gorm:"not null" json:"position"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// CodingExercise はコーディングレッスンの課題設定です
type CodingExercise struct {
	ExerciseID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"exercise_id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lesson_id"`
	Language    string    `gorm:"not null" json:"language"`
	StarterCode string    `gorm:"type:text" json:"starter_code"`
	Stdin       string    `gorm:"type:text" json:"stdin"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CodingExercise) TableName() string {
	return "coding_exercises"
}

// CreateChapterRequest は章作成APIのリクエストDTO
type CreateChapterRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// CreateLessonRequest はレッスン作成APIのリクエストDTO
type CreateLessonRequest struct {
	Title    string     `json:"title" validate:"required,min=1,max=200"`
	Type     LessonType `json:"type" validate:"required,oneof=video quiz coding"`
	VideoURL *string    `json:"video_url,omitempty" validate:"omitempty,url"`
}

// ReorderLessonRequest はレッスン並び替えAPIのリクエストDTO
type ReorderLessonRequest struct {
	Position int `json:"position" validate:"required,min=1"`
}
