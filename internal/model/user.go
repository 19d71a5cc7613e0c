package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role はユーザーの役割を表す閉じた列挙です。
// 認可判定は permission_service の単一の switch に集約されています。
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleAssistant  Role = "assistant"
	RoleLearner    Role = "learner"
)

// Valid は既知の役割かどうかを返します
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleAssistant, RoleLearner:
		return true
	}
	return false
}

// User はテナントに所属するユーザーの基本情報
type User struct {
	UserID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_users_tenant_email" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"not null;uniqueIndex:uq_users_tenant_email" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'learner'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Actor は認証済みユーザーのスナップショット。
// セッションプロバイダが生成し、各サービス呼び出しに明示的に引き渡されます
// (コンテキストから暗黙に読み取るのはミドルウェアとハンドラだけ)。
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
}

// SignupRequest は新規登録APIのリクエストDTO
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AssignRoleRequest は役割変更APIのリクエストDTO (admin のみ)
type AssignRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin instructor assistant learner"`
}

// UserResponse はクライアントに返すユーザー情報
type UserResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
