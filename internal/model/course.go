// internal/model/course.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
)

// Course はテナントに所属するコースを表します
type Course struct {
	CourseID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"course_id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Status      CourseStatus   `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// 関連 (Preload用)
	Chapters []Chapter `gorm:"foreignKey:CourseID;references:CourseID" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseInstructor はコースと講師 (User) の多対多の関連
type CourseInstructor struct {
	CourseID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
}

func (CourseInstructor) TableName() string {
	return "course_instructors"
}

// CreateCourseRequest はコース作成APIのリクエストDTO
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// AssignInstructorRequest は講師割り当てAPIのリクエストDTO
type AssignInstructorRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}
