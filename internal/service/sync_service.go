package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockery --name SyncService --output ./mocks --outpkg mocks --case=underscore

// SyncService は学習アクティビティ (クイズ・コード提出・動画視聴) を
// レッスン完了状態へ反映します。lesson_progress への書き込みはこの
// サービスと動画完了操作だけが行う。
type SyncService interface {
	SubmitQuiz(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.SubmitQuizRequest) (*model.QuizResultResponse, error)
	SubmitCode(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.SubmitCodeRequest) (*model.SubmissionResponse, error)
	// ReconcileCodingProgress は提出履歴から完了状態を再導出します。
	// 何度呼んでも同じ結果になる (提出の削除や判定の修正後の回復用)。
	ReconcileCodingProgress(ctx context.Context, actor model.Actor, lessonID uuid.UUID) (bool, error)
	CompleteVideoLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID) error
}

type syncService struct {
	db             *gorm.DB
	lessonRepo     repository.LessonRepository
	progressRepo   repository.ProgressRepository
	quizRepo       repository.QuizRepository
	submissionRepo repository.SubmissionRepository
	judge          JudgeClient
}

func NewSyncService(
	db *gorm.DB,
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	quizRepo repository.QuizRepository,
	submissionRepo repository.SubmissionRepository,
	judge JudgeClient,
) SyncService {
	return &syncService{
		db:             db,
		lessonRepo:     lessonRepo,
		progressRepo:   progressRepo,
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		judge:          judge,
	}
}

// submitRetries は採番競合時のリトライ回数
const submitRetries = 3

// quizAttemptCompletes はクイズ提出がレッスン完了とみなされる条件です。
// 現在は提出した時点で完了 (点数は問わない)。合格点を導入する場合は
// ここだけを変更すること。
func quizAttemptCompletes(attempt *model.QuizAttempt) bool {
	return attempt != nil
}

func (s *syncService) SubmitQuiz(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.SubmitQuizRequest) (*model.QuizResultResponse, error) {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.ensureUnlocked(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != model.LessonQuiz {
		return nil, model.NewAppError("INVALID_LESSON_TYPE", "このレッスンはクイズではありません。", "", model.ErrInvalidInput)
	}

	questions, err := s.lessonRepo.FindQuestions(ctx, s.db, actor.TenantID, lessonID)
	if err != nil {
		logger.Error("Failed to load quiz questions", "error", err, "lesson_id", lessonID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	if len(questions) == 0 {
		// 設問0件のクイズは採点できない。公開前検証をすり抜けた構成不備。
		logger.Warn("Quiz has no questions", "lesson_id", lessonID)
		return nil, model.NewAppError("INVALID_CONFIGURATION", "このクイズには設問がありません。", "", model.ErrInvalidConfiguration)
	}

	// 設問IDごとの正解で採点する。未回答の設問は不正解扱い。
	correctByID := make(map[uuid.UUID]int, len(questions))
	for _, q := range questions {
		correctByID[q.QuestionID] = q.CorrectChoice
	}

	answers := make([]model.QuizAnswer, 0, len(req.Answers))
	correctCount := 0
	for _, a := range req.Answers {
		correct, known := correctByID[a.QuestionID]
		if !known {
			return nil, model.NewAppError("INVALID_INPUT", "回答に存在しない設問が含まれています。", "answers", model.ErrInvalidInput)
		}
		isCorrect := a.Choice == correct
		if isCorrect {
			correctCount++
		}
		answers = append(answers, model.QuizAnswer{
			QuestionID: a.QuestionID,
			Choice:     a.Choice,
			Correct:    isCorrect,
		})
	}

	score := CompletionPercent(len(questions), correctCount)
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	attempt := &model.QuizAttempt{
		AttemptID:      uuid.New(),
		TenantID:       actor.TenantID,
		UserID:         actor.UserID,
		LessonID:       lessonID,
		Score:          score,
		TimeElapsedSec: req.TimeElapsedSec,
		CompletedAt:    time.Now(),
		Answers:        answersJSON,
	}
	completed := quizAttemptCompletes(attempt)

	// 提出の記録と完了状態の反映は不可分。片方だけ残ると再導出できない。
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quizRepo.CreateAttempt(ctx, tx, attempt); err != nil {
			return err
		}
		if completed {
			return s.progressRepo.Upsert(ctx, tx, &model.LessonProgress{
				ProgressID: uuid.New(),
				TenantID:   actor.TenantID,
				UserID:     actor.UserID,
				LessonID:   lessonID,
				Completed:  true,
			})
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to record quiz attempt", "error", err, "lesson_id", lessonID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "クイズの保存に失敗しました。", "", err)
	}

	logger.Info("Quiz attempt recorded", "lesson_id", lessonID, "score", score, "completed", completed)
	return &model.QuizResultResponse{
		AttemptID:      attempt.AttemptID,
		Score:          score,
		CorrectCount:   correctCount,
		TotalQuestions: len(questions),
		Completed:      completed,
	}, nil
}

func (s *syncService) SubmitCode(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.SubmitCodeRequest) (*model.SubmissionResponse, error) {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.ensureUnlocked(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != model.LessonCoding {
		return nil, model.NewAppError("INVALID_LESSON_TYPE", "このレッスンはコーディング課題ではありません。", "", model.ErrInvalidInput)
	}

	exercise, err := s.lessonRepo.FindExercise(ctx, s.db, actor.TenantID, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Coding lesson has no exercise", "lesson_id", lessonID)
			return nil, model.NewAppError("INVALID_CONFIGURATION", "このレッスンには課題が設定されていません。", "", model.ErrInvalidConfiguration)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	// 先に in_queue で提出を確定する。ジャッジが落ちても提出自体は残り、
	// 学習者は同じ試行番号を失わない。
	var submission *model.CodingSubmission
	for i := 0; ; i++ {
		submission, err = s.createSubmission(ctx, actor, lessonID, req)
		if err == nil {
			break
		}
		if errors.Is(err, model.ErrConflict) && i < submitRetries {
			logger.Warn("Attempt number conflict, retrying", "lesson_id", lessonID, "retry", i+1)
			continue
		}
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("CONFLICT", "他の提出と競合しました。もう一度お試しください。", "", model.ErrConflict)
		}
		logger.Error("Failed to create submission", "error", err, "lesson_id", lessonID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "提出の保存に失敗しました。", "", err)
	}

	result, err := s.judge.Execute(ctx, &model.JudgeRequest{
		Language: req.Language,
		Code:     req.Code,
		Stdin:    exercise.Stdin,
	})
	if err != nil {
		// 提出は in_queue のまま残す。進捗は触らない。
		logger.Error("Judge execution failed", "error", err, "submission_id", submission.SubmissionID)
		return nil, model.NewAppError("JUDGE_UNAVAILABLE", "採点サービスに接続できませんでした。時間をおいて再度お試しください。", "", model.ErrExternalService)
	}

	status, err := model.JudgeStatusFromCode(result.StatusCode)
	if err != nil {
		logger.Error("Judge returned unknown status code", "error", err, "code", result.StatusCode)
		return nil, model.NewAppError("JUDGE_UNAVAILABLE", "採点サービスの応答が不正です。", "", model.ErrExternalService)
	}
	passed := status == model.StatusAccepted

	// 判定の反映後は合否にかかわらず履歴から完了状態を再導出する。
	// 合格提出が1件でも残っていれば完了、残っていなければ未完了に戻る。
	var completed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.submissionRepo.UpdateVerdict(ctx, tx, actor.TenantID, submission.SubmissionID, status, passed); err != nil {
			return err
		}
		completed, err = s.submissionRepo.ExistsPassed(ctx, tx, actor.TenantID, actor.UserID, lessonID)
		if err != nil {
			return err
		}
		return s.progressRepo.Upsert(ctx, tx, &model.LessonProgress{
			ProgressID: uuid.New(),
			TenantID:   actor.TenantID,
			UserID:     actor.UserID,
			LessonID:   lessonID,
			Completed:  completed,
		})
	})
	if err != nil {
		logger.Error("Failed to record verdict", "error", err, "submission_id", submission.SubmissionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "判定結果の保存に失敗しました。", "", err)
	}

	logger.Info("Code submission judged",
		"submission_id", submission.SubmissionID,
		"attempt", submission.AttemptNumber,
		"status", status,
		"passed", passed,
		"completed", completed,
	)
	return &model.SubmissionResponse{
		SubmissionID:  submission.SubmissionID,
		AttemptNumber: submission.AttemptNumber,
		Status:        status,
		Passed:        passed,
		Output:        result.Output,
		Completed:     completed,
	}, nil
}

// createSubmission は試行番号の採番と提出行の作成を1トランザクションで行います。
// 採番は既存件数+1。同時提出は複合ユニーク制約が弾き model.ErrConflict になる。
func (s *syncService) createSubmission(ctx context.Context, actor model.Actor, lessonID uuid.UUID, req *model.SubmitCodeRequest) (*model.CodingSubmission, error) {
	var submission *model.CodingSubmission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.submissionRepo.CountByUserAndLesson(ctx, tx, actor.TenantID, actor.UserID, lessonID)
		if err != nil {
			return err
		}
		submission = &model.CodingSubmission{
			SubmissionID:  uuid.New(),
			TenantID:      actor.TenantID,
			LessonID:      lessonID,
			UserID:        actor.UserID,
			AttemptNumber: int(count) + 1,
			Language:      req.Language,
			Code:          req.Code,
			Status:        model.StatusInQueue,
		}
		return s.submissionRepo.Create(ctx, tx, submission)
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *syncService) ReconcileCodingProgress(ctx context.Context, actor model.Actor, lessonID uuid.UUID) (bool, error) {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.findLesson(ctx, actor, lessonID)
	if err != nil {
		return false, err
	}
	if lesson.Type != model.LessonCoding {
		return false, model.NewAppError("INVALID_LESSON_TYPE", "このレッスンはコーディング課題ではありません。", "", model.ErrInvalidInput)
	}

	var completed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completed, err = s.submissionRepo.ExistsPassed(ctx, tx, actor.TenantID, actor.UserID, lessonID)
		if err != nil {
			return err
		}
		return s.progressRepo.Upsert(ctx, tx, &model.LessonProgress{
			ProgressID: uuid.New(),
			TenantID:   actor.TenantID,
			UserID:     actor.UserID,
			LessonID:   lessonID,
			Completed:  completed,
		})
	})
	if err != nil {
		logger.Error("Failed to reconcile coding progress", "error", err, "lesson_id", lessonID)
		return false, model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の再計算に失敗しました。", "", err)
	}

	logger.Info("Coding progress reconciled", "lesson_id", lessonID, "completed", completed)
	return completed, nil
}

func (s *syncService) CompleteVideoLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.ensureUnlocked(ctx, actor, lessonID)
	if err != nil {
		return err
	}
	if lesson.Type != model.LessonVideo {
		return model.NewAppError("INVALID_LESSON_TYPE", "このレッスンは動画ではありません。", "", model.ErrInvalidInput)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.progressRepo.Upsert(ctx, tx, &model.LessonProgress{
			ProgressID: uuid.New(),
			TenantID:   actor.TenantID,
			UserID:     actor.UserID,
			LessonID:   lessonID,
			Completed:  true,
		})
	})
	if err != nil {
		logger.Error("Failed to complete video lesson", "error", err, "lesson_id", lessonID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "完了状態の保存に失敗しました。", "", err)
	}

	logger.Info("Video lesson completed", "lesson_id", lessonID, "user_id", actor.UserID)
	return nil
}

func (s *syncService) findLesson(ctx context.Context, actor model.Actor, lessonID uuid.UUID) (*model.Lesson, error) {
	lesson, err := s.lessonRepo.FindLesson(ctx, s.db, actor.TenantID, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	return lesson, nil
}

// ensureUnlocked はレッスンが存在し、学習者にとって解錠されていることを確認します。
// 施錠中のレッスンへのアクティビティは順序の侵害なので拒否する。
func (s *syncService) ensureUnlocked(ctx context.Context, actor model.Actor, lessonID uuid.UUID) (*model.Lesson, error) {
	lesson, err := s.findLesson(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}

	chapter, err := s.lessonRepo.FindChapter(ctx, s.db, actor.TenantID, lesson.ChapterID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	chapters, err := s.lessonRepo.FindChaptersWithLessons(ctx, s.db, actor.TenantID, chapter.CourseID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}
	completed, err := s.progressRepo.MapByUser(ctx, s.db, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
	}

	for _, cs := range ComputeLockStates(chapters, completed) {
		for _, ls := range cs.Lessons {
			if ls.Lesson.LessonID == lessonID {
				if ls.IsLocked {
					return nil, model.NewAppError("LESSON_LOCKED", "前のレッスンを完了してください。", "", model.ErrForbidden)
				}
				return lesson, nil
			}
		}
	}
	// レッスンはあるがコース構成に現れない (削除直後など)
	return nil, model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
}
