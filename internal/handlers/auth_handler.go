// internal/handlers/auth_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/service"
	"go_5_course_keep/internal/webutil"
)

type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(s service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service: s,
		logger:  logger,
	}
}

// PostSignup は現在のテナントに新しいユーザーを登録するハンドラ
func (h *AuthHandler) PostSignup(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSignup"))

	tenant, err := middleware.GetTenantFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_slug", tenant.Slug))

	var req model.SignupRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	user, err := h.service.Signup(r.Context(), tenant, &req)
	if err != nil {
		logger.Error("Error signing up user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp := model.UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	logger.Info("User signed up successfully", slog.String("user_id", user.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// PostLogin はログインしてアクセストークンを返すハンドラ
func (h *AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostLogin"))

	tenant, err := middleware.GetTenantFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("tenant_slug", tenant.Slug))

	var req model.LoginRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), tenant, &req)
	if err != nil {
		logger.Warn("Login attempt failed", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Login successful")
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// PutUserRole はユーザーの役割を変更するハンドラ (admin のみ)
func (h *AuthHandler) PutUserRole(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutUserRole"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	userID, ok := parseURLParam(w, r, logger, "user_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("user_id", userID.String()))

	var req model.AssignRoleRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.AssignRole(r.Context(), actor, userID, &req); err != nil {
		logger.Error("Error assigning role in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Role assigned successfully", slog.String("role", string(req.Role)))
	w.WriteHeader(http.StatusNoContent)
}
