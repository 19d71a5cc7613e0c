package service

import (
	"context"
	"errors"
	"net"
	"strings"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantService はサブドメインによるテナント解決とテナント管理を提供します
type TenantService interface {
	// ResolveHost はリクエストの Host ヘッダーからテナントを解決します。
	// ベースドメイン直下の単一ラベルだけをサブドメインとして受け付ける。
	ResolveHost(ctx context.Context, host string) (*model.Tenant, error)
	CreateTenant(ctx context.Context, req *model.CreateTenantRequest) (*model.Tenant, error)
	// RenameSlug はテナントのサブドメインを変更します (admin のみ)。
	// 変更後、旧 slug で発行されたトークンは認証ミドルウェアで失効する。
	RenameSlug(ctx context.Context, actor model.Actor, req *model.RenameSlugRequest) (*model.Tenant, error)
}

type tenantService struct {
	db         *gorm.DB
	tenantRepo repository.TenantRepository
	cfg        *config.Config
}

func NewTenantService(db *gorm.DB, tenantRepo repository.TenantRepository, cfg *config.Config) TenantService {
	return &tenantService{
		db:         db,
		tenantRepo: tenantRepo,
		cfg:        cfg,
	}
}

func (s *tenantService) ResolveHost(ctx context.Context, host string) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	slug, err := extractSlug(host, s.cfg.Server.BaseDomain)
	if err != nil {
		logger.Warn("Host did not yield a valid tenant slug", "host", host, "error", err)
		return nil, model.ErrTenantNotFound
	}

	tenant, err := s.tenantRepo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		if errors.Is(err, model.ErrTenantNotFound) {
			logger.Warn("Tenant not found for slug", "slug", slug)
			return nil, model.ErrTenantNotFound
		}
		logger.Error("Error finding tenant by slug", "error", err, "slug", slug)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	return tenant, nil
}

// extractSlug は Host からサブドメインのラベルを取り出します。
// "acme.coursekeep.app" -> "acme"。ベースドメインそのもの、ポート以外の
// 余分なラベル ("a.b.coursekeep.app")、別ドメインはすべてエラー。
func extractSlug(host, baseDomain string) (string, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	suffix := "." + strings.ToLower(baseDomain)
	if !strings.HasSuffix(host, suffix) {
		return "", errors.New("host does not match base domain")
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return "", errors.New("host must have exactly one subdomain label")
	}
	return slug, nil
}

func (s *tenantService) CreateTenant(ctx context.Context, req *model.CreateTenantRequest) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	tenant := &model.Tenant{
		TenantID: uuid.New(),
		Name:     req.Name,
		Slug:     strings.ToLower(req.Slug),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.Create(ctx, tx, tenant); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Tenant slug already exists", "slug", tenant.Slug)
				return model.NewAppError("DUPLICATE_SLUG", "このサブドメインは既に使用されています。", "slug", model.ErrConflict)
			}
			logger.Error("Failed to create tenant in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "テナントの作成に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Tenant created", "tenant_id", tenant.TenantID, "slug", tenant.Slug)
	return tenant, nil
}

func (s *tenantService) RenameSlug(ctx context.Context, actor model.Actor, req *model.RenameSlugRequest) (*model.Tenant, error) {
	logger := middleware.GetLogger(ctx)

	if actor.Role != model.RoleAdmin {
		logger.Warn("Slug rename denied: actor is not admin", "user_id", actor.UserID, "role", actor.Role)
		return nil, model.NewAppError("FORBIDDEN", "サブドメインの変更は管理者のみ可能です。", "", model.ErrForbidden)
	}

	newSlug := strings.ToLower(req.Slug)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.UpdateSlug(ctx, tx, actor.TenantID, newSlug); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Slug rename conflict", "slug", newSlug)
				return model.NewAppError("DUPLICATE_SLUG", "このサブドメインは既に使用されています。", "slug", model.ErrConflict)
			}
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("TENANT_NOT_FOUND", "テナントが見つかりません。", "", model.ErrTenantNotFound)
			}
			logger.Error("Failed to update tenant slug", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サブドメインの変更に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, s.db, actor.TenantID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	// 旧 slug を含むトークンはここから先すべて失効する
	logger.Info("Tenant slug renamed; existing sessions invalidated", "tenant_id", actor.TenantID, "new_slug", newSlug)
	return tenant, nil
}
