// internal/handlers/tenant_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/service"
	"go_5_course_keep/internal/webutil"
)

type TenantHandler struct {
	service service.TenantService
	logger  *slog.Logger
}

func NewTenantHandler(s service.TenantService, logger *slog.Logger) *TenantHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantHandler{
		service: s,
		logger:  logger,
	}
}

// PostTenant は新しいテナントを作成するハンドラ。
// テナント解決ミドルウェアの外 (プラットフォーム直下) にマウントされる。
func (h *TenantHandler) PostTenant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostTenant"))

	var req model.CreateTenantRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	tenant, err := h.service.CreateTenant(r.Context(), &req)
	if err != nil {
		logger.Error("Error creating tenant in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Tenant created successfully", slog.String("tenant_id", tenant.TenantID.String()), slog.String("slug", tenant.Slug))
	webutil.RespondWithJSON(w, http.StatusCreated, tenant, logger)
}

// PutTenantSlug は現在のテナントのサブドメインを変更するハンドラ (admin のみ)。
// 成功すると旧 slug を含むすべてのトークンが失効する。
func (h *TenantHandler) PutTenantSlug(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutTenantSlug"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.RenameSlugRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	tenant, err := h.service.RenameSlug(r.Context(), actor, &req)
	if err != nil {
		logger.Error("Error renaming tenant slug in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Tenant slug renamed", slog.String("slug", tenant.Slug))
	webutil.RespondWithJSON(w, http.StatusOK, tenant, logger)
}
