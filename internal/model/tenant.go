package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant は学校・組織を表します。サブドメインの slug で解決されます。
type Tenant struct {
	TenantID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Name      string         `gorm:"not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

type ContextKey string

const (
	// TenantKey は解決済みテナント (*Tenant) をコンテキストに格納するキー
	TenantKey ContextKey = "tenant"
	// ActorKey は認証済みアクター (Actor) をコンテキストに格納するキー
	ActorKey ContextKey = "actor"
)

// CreateTenantRequest はテナント作成APIのリクエストDTO
type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Slug string `json:"slug" validate:"required,min=1,max=63,hostname_rfc1123"`
}

// RenameSlugRequest はサブドメイン変更APIのリクエストDTO。
// slug 変更後は旧 slug を含むセッショントークンが無効になる。
type RenameSlugRequest struct {
	Slug string `json:"slug" validate:"required,min=1,max=63,hostname_rfc1123"`
}
