package service

import (
	"context"
	"errors"
	"math"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockery --name ProgressionService --output ./mocks --outpkg mocks --case=underscore

// ProgressionService はコース内のレッスンのロック状態と進捗率を導出します。
// ロック状態はDBに保存されない。レッスンの並びと完了状態から毎回計算される。
type ProgressionService interface {
	// GetCourseContent はコースの章・レッスンをロック状態付きで返します。
	// 学習者には公開済みコースのみ。講師・管理者は下書きも閲覧できる。
	GetCourseContent(ctx context.Context, actor model.Actor, courseID uuid.UUID) (*model.CourseContentResponse, error)
	// CourseCompletion はコース全体の完了率 (0..100) を返します
	CourseCompletion(ctx context.Context, actor model.Actor, courseID uuid.UUID) (int, error)
}

type progressionService struct {
	db           *gorm.DB
	courseRepo   repository.CourseRepository
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
}

func NewProgressionService(db *gorm.DB, courseRepo repository.CourseRepository, lessonRepo repository.LessonRepository, progressRepo repository.ProgressRepository) ProgressionService {
	return &progressionService{
		db:           db,
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
	}
}

// ComputeLockStates はロック判定の本体です。純粋関数であり、入力の
// 章 (position順、章内レッスンもposition順) と完了マップだけから決まる。
//
// 規則: レッスンは章をまたいだ一本の列とみなし、先頭から見て
// それより前のレッスンがすべて完了していれば解錠、1つでも未完了が
// あれば施錠。自分自身の完了状態は判定に使わない。前方のレッスンが
// 後から未完了に戻れば、完了済みレッスンであっても施錠される
// (古い完了が前方へ波及しないのはアキュムレータが両方を要求するため)。
func ComputeLockStates(chapters []*model.Chapter, completed map[uuid.UUID]bool) []model.ChapterState {
	states := make([]model.ChapterState, 0, len(chapters))
	prevCompleted := true
	for _, chapter := range chapters {
		cs := model.ChapterState{
			Chapter: chapter,
			Lessons: make([]model.LessonState, 0, len(chapter.Lessons)),
		}
		for i := range chapter.Lessons {
			lesson := &chapter.Lessons[i]
			done := completed[lesson.LessonID]
			cs.Lessons = append(cs.Lessons, model.LessonState{
				Lesson:    lesson,
				Completed: done,
				IsLocked:  !prevCompleted,
			})
			prevCompleted = prevCompleted && done
		}
		states = append(states, cs)
	}
	return states
}

// CompletionPercent は完了率を最近接整数への丸めで返します。レッスン0件は0%。
func CompletionPercent(total, completedCount int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completedCount) * 100 / float64(total)))
}

func (s *progressionService) GetCourseContent(ctx context.Context, actor model.Actor, courseID uuid.UUID) (*model.CourseContentResponse, error) {
	logger := middleware.GetLogger(ctx)

	course, err := s.courseRepo.FindByID(ctx, s.db, actor.TenantID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Failed to find course", "error", err, "course_id", courseID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	// 学習者には公開済みコースだけを見せる。下書きは存在も知らせない。
	if course.Status != model.CoursePublished && actor.Role == model.RoleLearner {
		return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
	}

	chapters, err := s.lessonRepo.FindChaptersWithLessons(ctx, s.db, actor.TenantID, courseID)
	if err != nil {
		logger.Error("Failed to load chapters", "error", err, "course_id", courseID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	completed, err := s.progressRepo.MapByUser(ctx, s.db, actor.TenantID, actor.UserID)
	if err != nil {
		logger.Error("Failed to load progress map", "error", err, "user_id", actor.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	states := ComputeLockStates(chapters, completed)

	total := 0
	done := 0
	for _, cs := range states {
		for _, ls := range cs.Lessons {
			total++
			if ls.Completed {
				done++
			}
		}
	}

	return &model.CourseContentResponse{
		CourseID:          courseID,
		Chapters:          states,
		CompletionPercent: CompletionPercent(total, done),
	}, nil
}

func (s *progressionService) CourseCompletion(ctx context.Context, actor model.Actor, courseID uuid.UUID) (int, error) {
	content, err := s.GetCourseContent(ctx, actor, courseID)
	if err != nil {
		return 0, err
	}
	return content.CompletionPercent, nil
}
