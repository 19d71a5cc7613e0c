// internal/model/submission.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JudgeStatus は外部ジャッジの判定結果の内部表現です
type JudgeStatus string

const (
	StatusInQueue           JudgeStatus = "in_queue"
	StatusProcessing        JudgeStatus = "processing"
	StatusAccepted          JudgeStatus = "accepted"
	StatusWrongAnswer       JudgeStatus = "wrong_answer"
	StatusTimeLimitExceeded JudgeStatus = "time_limit_exceeded"
	StatusCompilationError  JudgeStatus = "compilation_error"
	StatusRuntimeError      JudgeStatus = "runtime_error"
	StatusInternalError     JudgeStatus = "internal_error"
	StatusExecFormatError   JudgeStatus = "exec_format_error"
)

// JudgeStatusFromCode はジャッジのステータスコード (1..14) を内部表現へ変換します。
// 7..12 は原因の異なる実行時エラーだが、この層では区別しない。
func JudgeStatusFromCode(code int) (JudgeStatus, error) {
	switch code {
	case 1:
		return StatusInQueue, nil
	case 2:
		return StatusProcessing, nil
	case 3:
		return StatusAccepted, nil
	case 4:
		return StatusWrongAnswer, nil
	case 5:
		return StatusTimeLimitExceeded, nil
	case 6:
		return StatusCompilationError, nil
	case 7, 8, 9, 10, 11, 12:
		return StatusRuntimeError, nil
	case 13:
		return StatusInternalError, nil
	case 14:
		return StatusExecFormatError, nil
	default:
		return "", fmt.Errorf("unknown judge status code: %d", code)
	}
}

// JudgeRequest は外部ジャッジへの実行依頼
type JudgeRequest struct {
	Language string `json:"language"`
	Code     string `json:"source_code"`
	Stdin    string `json:"stdin"`
}

// JudgeResult はジャッジの判定結果。StatusCode は 1..14 のステータスコード。
type JudgeResult struct {
	StatusCode int    `json:"status_code"`
	Output     string `json:"output"`
}

// CodingSubmission はコーディングレッスンへの提出1回分です。
// AttemptNumber は (tenant, lesson, user) ごとの連番で、サーバ側で採番する
// (クライアントからは受け取らない)。複合ユニーク制約が採番の競合を検出する。
type CodingSubmission struct {
	SubmissionID  uuid.UUID   `gorm:"type:uuid;primaryKey" json:"submission_id"`
	TenantID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uq_submissions_attempt" json:"-"`
	LessonID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uq_submissions_attempt" json:"lesson_id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uq_submissions_attempt" json:"user_id"`
	AttemptNumber int         `gorm:"not null;uniqueIndex:uq_submissions_attempt" json:"attempt_number"`
	Language      string      `gorm:"not null" json:"language"`
	Code          string      `gorm:"type:text;not null" json:"code"`
	Status        JudgeStatus `gorm:"type:varchar(30);not null" json:"status"`
	Passed        bool        `gorm:"not null;default:false" json:"passed"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (CodingSubmission) TableName() string {
	return "coding_submissions"
}

// SubmitCodeRequest はコード提出APIのリクエストDTO
type SubmitCodeRequest struct {
	Language string `json:"language" validate:"required,min=1,max=50"`
	Code     string `json:"code" validate:"required"`
}

// SubmissionResponse はコード提出APIのレスポンスDTO
type SubmissionResponse struct {
	SubmissionID  uuid.UUID   `json:"submission_id"`
	AttemptNumber int         `json:"attempt_number"`
	Status        JudgeStatus `json:"status"`
	Passed        bool        `json:"passed"`
	Output        string      `json:"output,omitempty"`
	Completed     bool        `json:"completed"`
}
