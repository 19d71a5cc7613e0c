// internal/model/quiz.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizAttempt はクイズ1回分の提出結果です。複数回の提出を履歴として保持し、
// completed_at が最新のものを表示・再導出の正とします。
type QuizAttempt struct {
	AttemptID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	TenantID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_attempts_user_lesson" json:"user_id"`
	LessonID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_attempts_user_lesson" json:"lesson_id"`
	Score          int            `gorm:"not null" json:"score"`
	TimeElapsedSec int            `gorm:"not null" json:"time_elapsed_sec"`
	CompletedAt    time.Time      `gorm:"not null;index" json:"completed_at"`
	Answers        datatypes.JSON `json:"answers"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// QuizAnswer は Answers JSON の1要素
type QuizAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Choice     int       `json:"choice"`
	Correct    bool      `json:"correct"`
}

// SubmitQuizRequest はクイズ提出APIのリクエストDTO
type SubmitQuizRequest struct {
	TimeElapsedSec int                 `json:"time_elapsed_sec" validate:"gte=0"`
	Answers        []QuizAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

type QuizAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Choice     int       `json:"choice" validate:"gte=0"`
}

// QuizResultResponse はクイズ提出APIのレスポンスDTO
type QuizResultResponse struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	Completed      bool      `json:"completed"`
}
