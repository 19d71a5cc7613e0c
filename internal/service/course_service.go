package service

import (
	"context"
	"encoding/json"
	"errors"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:generate mockery --name CourseService --output ./mocks --outpkg mocks --case=underscore

// CourseService はコース・章・レッスンの管理操作です。
// すべての操作は最初に PermissionService の認可判定を通る。
type CourseService interface {
	CreateCourse(ctx context.Context, actor model.Actor, req *model.CreateCourseRequest) (*model.Course, error)
	Publish(ctx context.Context, actor model.Actor, courseID uuid.UUID) error
	AssignInstructor(ctx context.Context, actor model.Actor, courseID uuid.UUID, req *model.AssignInstructorRequest) error

	AddChapter(ctx context.Context, actor model.Actor, courseID uuid.UUID, req *model.CreateChapterRequest) (*model.Chapter, error)
	AddLesson(ctx context.Context, actor model.Actor, chapterID uuid.UUID, req *model.CreateLessonRequest) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID) error
	ReorderLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.ReorderLessonRequest) error

	AddQuestion(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *AddQuestionRequest) (*model.QuizQuestion, error)
	AddExercise(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *AddExerciseRequest) (*model.CodingExercise, error)

	UpsertGrant(ctx context.Context, actor model.Actor, courseID uuid.UUID, req *model.UpsertGrantRequest) error
	RevokeGrant(ctx context.Context, actor model.Actor, courseID, userID uuid.UUID) error
}

// AddQuestionRequest はクイズ設問作成APIのリクエストDTO
type AddQuestionRequest struct {
	Prompt        string   `json:"prompt" validate:"required,min=1"`
	Choices       []string `json:"choices" validate:"required,min=2,dive,required"`
	CorrectChoice int      `json:"correct_choice" validate:"gte=0"`
}

// AddExerciseRequest はコーディング課題作成APIのリクエストDTO
type AddExerciseRequest struct {
	Language    string `json:"language" validate:"required,min=1,max=50"`
	StarterCode string `json:"starter_code"`
	Stdin       string `json:"stdin"`
}

type courseService struct {
	db         *gorm.DB
	courseRepo repository.CourseRepository
	lessonRepo repository.LessonRepository
	userRepo   repository.UserRepository
	grantRepo  repository.GrantRepository
	perm       PermissionService
}

func NewCourseService(
	db *gorm.DB,
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	userRepo repository.UserRepository,
	grantRepo repository.GrantRepository,
	perm PermissionService,
) CourseService {
	return &courseService{
		db:         db,
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		grantRepo:  grantRepo,
		perm:       perm,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, actor model.Actor, req *model.CreateCourseRequest) (*model.Course, error) {
	logger := middleware.GetLogger(ctx)

	if err := s.perm.Authorize(ctx, actor, uuid.Nil, model.ResourceCourse, model.ActionCreate); err != nil {
		return nil, err
	}

	course := &model.Course{
		CourseID:    uuid.New(),
		TenantID:    actor.TenantID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.CourseDraft,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.courseRepo.Create(ctx, tx, course); err != nil {
			return err
		}
		// 作成した講師は自動的にそのコースの講師になる
		if actor.Role == model.RoleInstructor {
			return s.courseRepo.AddInstructor(ctx, tx, actor.TenantID, course.CourseID, actor.UserID)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create course", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コースの作成に失敗しました。", "", err)
	}

	logger.Info("Course created", "course_id", course.CourseID, "title", course.Title)
	return course, nil
}

// Publish はコースを公開します。公開前に、すべての QUIZ レッスンに
// 設問が1問以上あることを検証する (0問のクイズは採点不能)。
func (s *courseService) Publish(ctx context.Context, actor model.Actor, courseID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	if err := s.perm.Authorize(ctx, actor, courseID, model.ResourceCourse, model.ActionPublish); err != nil {
		return err
	}

	quizIDs, err := s.lessonRepo.FindQuizLessonIDs(ctx, s.db, actor.TenantID, courseID)
	if err != nil {
		logger.Error("Failed to list quiz lessons for publish check", "error", err, "course_id", courseID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	for _, lessonID := range quizIDs {
		count, err := s.lessonRepo.CountQuestions(ctx, s.db, actor.TenantID, lessonID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}
		if count == 0 {
			logger.Warn("Publish rejected: quiz lesson has no questions", "course_id", courseID, "lesson_id", lessonID)
			return model.NewAppError("INVALID_CONFIGURATION", "設問のないクイズレッスンがあるため公開できません。", "", model.ErrInvalidConfiguration)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.UpdateStatus(ctx, tx, actor.TenantID, courseID, model.CoursePublished)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to publish course", "error", err, "course_id", courseID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "コースの公開に失敗しました。", "", err)
	}

	logger.Info("Course published", "course_id", courseID)
	return nil
}

func (s *courseService) AssignInstructor(ctx context.Context, actor model.Actor, courseID uuid.UUID, req *model.AssignInstructorRequest) error {
	logger := middleware.GetLogger(ctx)

	if err := s.perm.Authorize(ctx, actor, courseID, model.ResourceCourse, model.ActionAssignInstructor); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, s.db, actor.TenantID, req.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "user_id", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	if user.Role != model.RoleInstructor {
		return model.NewAppError("INVALID_ROLE", "講師ロールのユーザーのみ割り当てられます。", "user_id", model.ErrInvalidInput)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.AddInstructor(ctx, tx, actor.TenantID, courseID, req.UserID)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.NewAppError("ALREADY_ASSIGNED", "このユーザーは既に講師として割り当てられています。", "user_id", model.ErrConflict)
		}
		logger.Error("Failed to assign instructor", "error", err, "course_id", courseID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "講師の割り当てに失敗しました。", "", err)
	}

	logger.Info("Instructor assigned", "course_id", courseID, "user_id", req.UserID)
	return nil
}

func (s *courseService) AddChapter(ctx context.Context, actor model.Actor, courseID uuid.UUID, req *model.CreateChapterRequest) (*model.Chapter, error) {
	logger := middleware.GetLogger(ctx)

	if err := s.perm.Authorize(ctx, actor, courseID, model.ResourceCourse, model.ActionUpdate); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.FindByID(ctx, s.db, actor.TenantID, courseID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	var chapter *model.Chapter
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxPos, err := s.lessonRepo.MaxChapterPosition(ctx, tx, actor.TenantID, courseID)
		if err != nil {
			return err
		}
		chapter = &model.Chapter{
			ChapterID: uuid.New(),
			TenantID:  actor.TenantID,
			CourseID:  courseID,
			Title:     req.Title,
			Position:  maxPos + 1,
		}
		return s.lessonRepo.CreateChapter(ctx, tx, chapter)
	})
	if err != nil {
		logger.Error("Failed to add chapter", "error", err, "course_id", courseID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "章の作成に失敗しました。", "", err)
	}

	logger.Info("Chapter added", "chapter_id", chapter.ChapterID, "position", chapter.Position)
	return chapter, nil
}

func (s *courseService) AddLesson(ctx context.Context, actor model.Actor, chapterID uuid.UUID, req *model.CreateLessonRequest) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)

	chapter, err := s.lessonRepo.FindChapter(ctx, s.db, actor.TenantID, chapterID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("CHAPTER_NOT_FOUND", "章が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	if err := s.perm.Authorize(ctx, actor, chapter.CourseID, model.ResourceLesson, model.ActionCreate); err != nil {
		return nil, err
	}

	if req.Type == model.LessonVideo && (req.VideoURL == nil || *req.VideoURL == "") {
		return nil, model.NewAppError("INVALID_INPUT", "動画レッスンには動画URLが必要です。", "video_url", model.ErrInvalidInput)
	}

	var lesson *model.Lesson
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxPos, err := s.lessonRepo.MaxLessonPosition(ctx, tx, actor.TenantID, chapterID)
		if err != nil {
			return err
		}
		lesson = &model.Lesson{
			LessonID:  uuid.New(),
			TenantID:  actor.TenantID,
			ChapterID: chapterID,
			Title:     req.Title,
			Type:      req.Type,
			Position:  maxPos + 1,
			VideoURL:  req.VideoURL,
		}
		return s.lessonRepo.CreateLesson(ctx, tx, lesson)
	})
	if err != nil {
		logger.Error("Failed to add lesson", "error", err, "chapter_id", chapterID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "レッスンの作成に失敗しました。", "", err)
	}

	logger.Info("Lesson added", "lesson_id", lesson.LessonID, "type", lesson.Type, "position", lesson.Position)
	return lesson, nil
}

// DeleteLesson はレッスンを削除し、後続レッスンの position を詰めて連番を保ちます
func (s *courseService) DeleteLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	lesson, chapter, err := s.findLessonWithChapter(ctx, actor, lessonID)
	if err != nil {
		return err
	}
	if err := s.perm.Authorize(ctx, actor, chapter.CourseID, model.ResourceLesson, model.ActionDelete); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lessonRepo.DeleteLesson(ctx, tx, actor.TenantID, lessonID); err != nil {
			return err
		}
		return s.lessonRepo.ShiftLessonsAfterDelete(ctx, tx, actor.TenantID, lesson.ChapterID, lesson.Position)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to delete lesson", "error", err, "lesson_id", lessonID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "レッスンの削除に失敗しました。", "", err)
	}

	logger.Info("Lesson deleted", "lesson_id", lessonID)
	return nil
}

func (s *courseService) ReorderLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.ReorderLessonRequest) error {
	logger := middleware.GetLogger(ctx)

	lesson, chapter, err := s.findLessonWithChapter(ctx, actor, lessonID)
	if err != nil {
		return err
	}
	if err := s.perm.Authorize(ctx, actor, chapter.CourseID, model.ResourceLesson, model.ActionUpdate); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxPos, err := s.lessonRepo.MaxLessonPosition(ctx, tx, actor.TenantID, lesson.ChapterID)
		if err != nil {
			return err
		}
		if req.Position > maxPos {
			return model.NewAppError("INVALID_INPUT", "指定された表示順が範囲外です。", "position", model.ErrInvalidInput)
		}
		return s.lessonRepo.MoveLesson(ctx, tx, actor.TenantID, lesson.ChapterID, lessonID, lesson.Position, req.Position)
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return err
		}
		logger.Error("Failed to reorder lesson", "error", err, "lesson_id", lessonID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "レッスンの並び替えに失敗しました。", "", err)
	}

	logger.Info("Lesson reordered", "lesson_id", lessonID, "position", req.Position)
	return nil
}

func (s *courseService) AddQuestion(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *AddQuestionRequest) (*model.QuizQuestion, error) {
	logger := middleware.GetLogger(ctx)

	lesson, chapter, err := s.findLessonWithChapter(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.perm.Authorize(ctx, actor, chapter.CourseID, model.ResourceQuiz, model.ActionUpdate); err != nil {
		return nil, err
	}
	if lesson.Type != model.LessonQuiz {
		return nil, model.NewAppError("INVALID_LESSON_TYPE", "このレッスンはクイズではありません。", "", model.ErrInvalidInput)
	}
	if req.CorrectChoice >= len(req.Choices) {
		return nil, model.NewAppError("INVALID_INPUT", "正解の選択肢が範囲外です。", "correct_choice", model.ErrInvalidInput)
	}

	choicesJSON, err := json.Marshal(req.Choices)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	var question *model.QuizQuestion
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.lessonRepo.CountQuestions(ctx, tx, actor.TenantID, lessonID)
		if err != nil {
			return err
		}
		question = &model.QuizQuestion{
			QuestionID:    uuid.New(),
			TenantID:      actor.TenantID,
			LessonID:      lessonID,
			Prompt:        req.Prompt,
			Choices:       choicesJSON,
			CorrectChoice: req.CorrectChoice,
			Position:      int(count) + 1,
		}
		return s.lessonRepo.CreateQuestion(ctx, tx, question)
	})
	if err != nil {
		logger.Error("Failed to add quiz question", "error", err, "lesson_id", lessonID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "設問の作成に失敗しました。", "", err)
	}

	logger.Info("Quiz question added", "question_id", question.QuestionID, "lesson_id", lessonID)
	return question, nil
}

func (s *courseService) AddExercise(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *AddExerciseRequest) (*model.CodingExercise, error) {
	logger := middleware.GetLogger(ctx)

	lesson, chapter, err := s.findLessonWithChapter(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.perm.Authorize(ctx, actor, chapter.CourseID, model.ResourceLesson, model.ActionUpdate); err != nil {
		return nil, err
	}
	if lesson.Type != model.LessonCoding {
		return nil, model.NewAppError("INVALID_LESSON_TYPE", "このレッスンはコーディング課題ではありません。", "", model.ErrInvalidInput)
	}

	exercise := &model.CodingExercise{
		ExerciseID:  uuid.New(),
		TenantID:    actor.TenantID,
		LessonID:    lessonID,
		Language:    req.Language,
		StarterCode: req.StarterCode,
		Stdin:       req.Stdin,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.lessonRepo.CreateExercise(ctx, tx, exercise)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("ALREADY_EXISTS", "このレッスンには既に課題が設定されています。", "", model.ErrConflict)
		}
		logger.Error("Failed to add coding exercise", "error", err, "lesson_id", lessonID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "課題の作成に失敗しました。", "", err)
	}

	logger.Info("Coding exercise added", "exercise_id", exercise.ExerciseID, "lesson_id", lessonID)
	return exercise, nil
}

// UpsertGrant はアシスタントへのコース単位の権限委譲を作成・置換します
func (s *courseService) UpsertGrant(ctx context.Context, actor model.Actor, courseID uuid.UUID, req *model.UpsertGrantRequest) error {
	logger := middleware.GetLogger(ctx)

	if err := s.perm.Authorize(ctx, actor, courseID, model.ResourceCourse, model.ActionAssignAssistant); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, s.db, actor.TenantID, req.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "user_id", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	if user.Role != model.RoleAssistant {
		return model.NewAppError("INVALID_ROLE", "アシスタントロールのユーザーのみ権限を委譲できます。", "user_id", model.ErrInvalidInput)
	}

	grant := &model.PermissionGrant{
		GrantID:     uuid.New(),
		TenantID:    actor.TenantID,
		CourseID:    courseID,
		UserID:      req.UserID,
		Permissions: datatypes.NewJSONType(req.Permissions),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.grantRepo.Upsert(ctx, tx, grant)
	})
	if err != nil {
		logger.Error("Failed to upsert grant", "error", err, "course_id", courseID, "user_id", req.UserID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "権限委譲の保存に失敗しました。", "", err)
	}

	logger.Info("Permission grant upserted", "course_id", courseID, "user_id", req.UserID)
	return nil
}

// RevokeGrant は委譲を削除します。次の認可判定から即時に失効する。
func (s *courseService) RevokeGrant(ctx context.Context, actor model.Actor, courseID, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	if err := s.perm.Authorize(ctx, actor, courseID, model.ResourceCourse, model.ActionAssignAssistant); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.grantRepo.Delete(ctx, tx, actor.TenantID, courseID, userID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("GRANT_NOT_FOUND", "権限委譲が見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to revoke grant", "error", err, "course_id", courseID, "user_id", userID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "権限委譲の削除に失敗しました。", "", err)
	}

	logger.Info("Permission grant revoked", "course_id", courseID, "user_id", userID)
	return nil
}

func (s *courseService) findLessonWithChapter(ctx context.Context, actor model.Actor, lessonID uuid.UUID) (*model.Lesson, *model.Chapter, error) {
	lesson, err := s.lessonRepo.FindLesson(ctx, s.db, actor.TenantID, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil, model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
		}
		return nil, nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	chapter, err := s.lessonRepo.FindChapter(ctx, s.db, actor.TenantID, lesson.ChapterID)
	if err != nil {
		return nil, nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	return lesson, chapter, nil
}
