// internal/model/grant.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Resource は認可対象のリソース種別
type Resource string

const (
	ResourceCourse Resource = "course"
	ResourceLesson Resource = "lesson"
	ResourceQuiz   Resource = "quiz"
)

// Action はリソースに対する操作
type Action string

const (
	ActionCreate           Action = "create"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionPublish          Action = "publish"
	ActionAssignAssistant  Action = "assign_assistant"
	ActionAssignInstructor Action = "assign_instructor"
)

// GrantedPermissions はリソース名から許可アクション集合へのマッピング
type GrantedPermissions map[Resource][]Action

// PermissionGrant はアシスタントへのコース単位の権限委譲です。
// (course, user) につき高々1行。削除は即時に失効する (リクエストを跨ぐキャッシュなし)。
type PermissionGrant struct {
	GrantID     uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"grant_id"`
	TenantID    uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:uq_grants_course_user" json:"-"`
	CourseID    uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:uq_grants_course_user" json:"course_id"`
	UserID      uuid.UUID                              `gorm:"type:uuid;not null;uniqueIndex:uq_grants_course_user" json:"user_id"`
	Permissions datatypes.JSONType[GrantedPermissions] `json:"permissions"`
	CreatedAt   time.Time                              `json:"created_at"`
	UpdatedAt   time.Time                              `json:"updated_at"`
}

func (PermissionGrant) TableName() string {
	return "permission_grants"
}

// Allows は委譲された権限で (resource, action) が許可されるかを返します
func (g *PermissionGrant) Allows(resource Resource, action Action) bool {
	if g == nil {
		return false
	}
	actions, ok := g.Permissions.Data()[resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// UpsertGrantRequest は権限委譲APIのリクエストDTO
type UpsertGrantRequest struct {
	UserID      uuid.UUID          `json:"user_id" validate:"required"`
	Permissions GrantedPermissions `json:"permissions" validate:"required"`
}
