// internal/handlers/content_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/service"
	"go_5_course_keep/internal/webutil"
)

// ContentHandler は学習者向けのコンテンツ配信APIです
type ContentHandler struct {
	progression service.ProgressionService
	sync        service.SyncService
	logger      *slog.Logger
}

func NewContentHandler(progression service.ProgressionService, sync service.SyncService, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{
		progression: progression,
		sync:        sync,
		logger:      logger,
	}
}

// GetCourseContent はコースの章・レッスンをロック状態付きで返すハンドラ
func (h *ContentHandler) GetCourseContent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCourseContent"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	courseID, ok := parseURLParam(w, r, logger, "course_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("course_id", courseID.String()))

	content, err := h.progression.GetCourseContent(r.Context(), actor, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Course not found", slog.Any("error", err))
		} else {
			logger.Error("Error getting course content in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Course content retrieved", slog.Int("completion_percent", content.CompletionPercent))
	webutil.RespondWithJSON(w, http.StatusOK, content, logger)
}

// PostVideoComplete は動画レッスンの完了を記録するハンドラ
func (h *ContentHandler) PostVideoComplete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostVideoComplete"))

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

	if err := h.sync.CompleteVideoLesson(r.Context(), actor, lessonID); err != nil {
		logger.Error("Error completing video lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Video lesson marked completed")
	w.WriteHeader(http.StatusNoContent)
}
