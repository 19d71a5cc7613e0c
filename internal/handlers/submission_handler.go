// internal/handlers/submission_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/service"
	"go_5_course_keep/internal/webutil"
)

// SubmissionHandler はクイズ・コード提出のAPIです
type SubmissionHandler struct {
	service service.SyncService
	logger  *slog.Logger
}

func NewSubmissionHandler(s service.SyncService, logger *slog.Logger) *SubmissionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionHandler{
		service: s,
		logger:  logger,
	}
}

// PostQuizSubmission はクイズの回答を採点し、結果を返すハンドラ
func (h *SubmissionHandler) PostQuizSubmission(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostQuizSubmission"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	lessonID, ok := parseURLParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("lesson_id", lessonID.String()))

	var req model.SubmitQuizRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), actor, lessonID, &req)
	if err != nil {
		logger.Error("Error submitting quiz in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz submitted successfully", slog.Int("score", result.Score))
	webutil.RespondWithJSON(w, http.StatusCreated, result, logger)
}

// PostCodeSubmission はコードを外部ジャッジで実行し、判定を返すハンドラ
func (h *SubmissionHandler) PostCodeSubmission(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCodeSubmission"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	lessonID, ok := parseURLParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("lesson_id", lessonID.String()))

	var req model.SubmitCodeRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	result, err := h.service.SubmitCode(r.Context(), actor, lessonID, &req)
	if err != nil {
		logger.Error("Error submitting code in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Code submitted successfully",
		slog.Int("attempt", result.AttemptNumber),
		slog.String("status", string(result.Status)),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, result, logger)
}

// PostReconcile は提出履歴から完了状態を再導出するハンドラ
func (h *SubmissionHandler) PostReconcile(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostReconcile"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	lessonID, ok := parseURLParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("lesson_id", lessonID.String()))

	completed, err := h.service.ReconcileCodingProgress(r.Context(), actor, lessonID)
	if err != nil {
		logger.Error("Error reconciling coding progress in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Coding progress reconciled", slog.Bool("completed", completed))
	webutil.RespondWithJSON(w, http.StatusOK, map[string]bool{"completed": completed}, logger)
}
