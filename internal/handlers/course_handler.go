// internal/handlers/course_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/service"
	"go_5_course_keep/internal/webutil"
)

// CourseHandler はコース・章・レッスン・委譲の管理APIです。
// 認可はすべてサービス層の PermissionService が行う。
type CourseHandler struct {
	service service.CourseService
	logger  *slog.Logger
}

func NewCourseHandler(s service.CourseService, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{
		service: s,
		logger:  logger,
	}
}

func (h *CourseHandler) PostCourse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCourse"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.CreateCourseRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	course, err := h.service.CreateCourse(r.Context(), actor, &req)
	if err != nil {
		logger.Error("Error creating course in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Course created successfully", slog.String("course_id", course.CourseID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, course, logger)
}

func (h *CourseHandler) PostPublish(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostPublish"))

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

	if err := h.service.Publish(r.Context(), actor, courseID); err != nil {
		logger.Error("Error publishing course in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Course published successfully")
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) PostInstructor(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostInstructor"))

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

	var req model.AssignInstructorRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.AssignInstructor(r.Context(), actor, courseID, &req); err != nil {
		logger.Error("Error assigning instructor in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Instructor assigned successfully", slog.String("user_id", req.UserID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) PostChapter(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostChapter"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	courseID, ok := parseURLParam(w, r, logger, "course_id")
	if !ok {
		return
	}

	var req model.CreateChapterRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	chapter, err := h.service.AddChapter(r.Context(), actor, courseID, &req)
	if err != nil {
		logger.Error("Error adding chapter in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Chapter added successfully", slog.String("chapter_id", chapter.ChapterID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, chapter, logger)
}

func (h *CourseHandler) PostLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostLesson"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	chapterID, ok := parseURLParam(w, r, logger, "chapter_id")
	if !ok {
		return
	}

	var req model.CreateLessonRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	lesson, err := h.service.AddLesson(r.Context(), actor, chapterID, &req)
	if err != nil {
		logger.Error("Error adding lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson added successfully", slog.String("lesson_id", lesson.LessonID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, lesson, logger)
}

func (h *CourseHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteLesson"))

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

	if err := h.service.DeleteLesson(r.Context(), actor, lessonID); err != nil {
		logger.Error("Error deleting lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) PutLessonPosition(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutLessonPosition"))

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

	var req model.ReorderLessonRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.ReorderLesson(r.Context(), actor, lessonID, &req); err != nil {
		logger.Error("Error reordering lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson reordered successfully", slog.Int("position", req.Position))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) PostQuestion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostQuestion"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	lessonID, ok := parseURLParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}

	var req service.AddQuestionRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	question, err := h.service.AddQuestion(r.Context(), actor, lessonID, &req)
	if err != nil {
		logger.Error("Error adding quiz question in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz question added successfully", slog.String("question_id", question.QuestionID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, question, logger)
}

func (h *CourseHandler) PostExercise(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostExercise"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	lessonID, ok := parseURLParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}

	var req service.AddExerciseRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	exercise, err := h.service.AddExercise(r.Context(), actor, lessonID, &req)
	if err != nil {
		logger.Error("Error adding coding exercise in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Coding exercise added successfully", slog.String("exercise_id", exercise.ExerciseID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, exercise, logger)
}

func (h *CourseHandler) PutGrant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutGrant"))

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

	var req model.UpsertGrantRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	if err := h.service.UpsertGrant(r.Context(), actor, courseID, &req); err != nil {
		logger.Error("Error upserting grant in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grant upserted successfully", slog.String("user_id", req.UserID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) DeleteGrant(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteGrant"))

	actor, err := middleware.GetActorFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	courseID, ok := parseURLParam(w, r, logger, "course_id")
	if !ok {
		return
	}
	userID, ok := parseURLParam(w, r, logger, "user_id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("course_id", courseID.String()), slog.String("user_id", userID.String()))

	if err := h.service.RevokeGrant(r.Context(), actor, courseID, userID); err != nil {
		logger.Error("Error revoking grant in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Grant revoked successfully")
	w.WriteHeader(http.StatusNoContent)
}
