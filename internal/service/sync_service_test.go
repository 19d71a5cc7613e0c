package service

import (
	"context"
	"errors"
	"testing"

	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"
	repomocks "go_5_course_keep/internal/repository/mocks"
	"go_5_course_keep/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
func setupTestDBSync() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent), // テスト中はログを抑制
		TranslateError: true,                                  // 採番競合の検出に必要
	})
	if err != nil {
		panic("failed to connect database for sync service testing: " + err.Error())
	}
	err = db.AutoMigrate(
		&model.Tenant{}, &model.User{},
		&model.Course{}, &model.CourseInstructor{},
		&model.Chapter{}, &model.Lesson{},
		&model.QuizQuestion{}, &model.CodingExercise{},
		&model.PermissionGrant{}, &model.LessonProgress{},
		&model.QuizAttempt{}, &model.CodingSubmission{},
	)
	if err != nil {
		panic("failed to migrate database for sync service testing: " + err.Error())
	}
	return db
}

func newSyncService(db *gorm.DB, judge JudgeClient) SyncService {
	return NewSyncService(
		db,
		repository.NewGormLessonRepository(),
		repository.NewGormProgressRepository(),
		repository.NewGormQuizRepository(),
		repository.NewGormSubmissionRepository(),
		judge,
	)
}

// seedCourseWithLessons は公開済みコースと1つの章、指定した種別のレッスン列を作成します
func seedCourseWithLessons(t *testing.T, db *gorm.DB, tenantID uuid.UUID, types ...model.LessonType) []uuid.UUID {
	t.Helper()

	course := &model.Course{
		CourseID: uuid.New(),
		TenantID: tenantID,
		Title:    "テストコース",
		Status:   model.CoursePublished,
	}
	require.NoError(t, db.Create(course).Error)

	chapter := &model.Chapter{
		ChapterID: uuid.New(),
		TenantID:  tenantID,
		CourseID:  course.CourseID,
		Title:     "第1章",
		Position:  1,
	}
	require.NoError(t, db.Create(chapter).Error)

	videoURL := "https://example.com/intro.mp4"
	lessonIDs := make([]uuid.UUID, 0, len(types))
	for i, lt := range types {
		lesson := &model.Lesson{
			LessonID:  uuid.New(),
			TenantID:  tenantID,
			ChapterID: chapter.ChapterID,
			Title:     "レッスン",
			Type:      lt,
			Position:  i + 1,
		}
		if lt == model.LessonVideo {
			lesson.VideoURL = &videoURL
		}
		require.NoError(t, db.Create(lesson).Error)
		lessonIDs = append(lessonIDs, lesson.LessonID)
	}
	return lessonIDs
}

func seedQuestion(t *testing.T, db *gorm.DB, tenantID, lessonID uuid.UUID, position, correctChoice int) uuid.UUID {
	t.Helper()
	question := &model.QuizQuestion{
		QuestionID:    uuid.New(),
		TenantID:      tenantID,
		LessonID:      lessonID,
		Prompt:        "正しいものを選べ",
		Choices:       datatypes.JSON([]byte(`["A","B","C","D"]`)),
		CorrectChoice: correctChoice,
		Position:      position,
	}
	require.NoError(t, db.Create(question).Error)
	return question.QuestionID
}

func seedExercise(t *testing.T, db *gorm.DB, tenantID, lessonID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&model.CodingExercise{
		ExerciseID: uuid.New(),
		TenantID:   tenantID,
		LessonID:   lessonID,
		Language:   "go",
		Stdin:      "1 2\n",
	}).Error)
}

func markCompleted(t *testing.T, db *gorm.DB, actor model.Actor, lessonID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&model.LessonProgress{
		ProgressID: uuid.New(),
		TenantID:   actor.TenantID,
		UserID:     actor.UserID,
		LessonID:   lessonID,
		Completed:  true,
	}).Error)
}

func loadProgress(t *testing.T, db *gorm.DB, actor model.Actor, lessonID uuid.UUID) *model.LessonProgress {
	t.Helper()
	var progress model.LessonProgress
	err := db.Where("tenant_id = ? AND user_id = ? AND lesson_id = ?", actor.TenantID, actor.UserID, lessonID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	require.NoError(t, err)
	return &progress
}

func learnerActor(tenantID uuid.UUID) model.Actor {
	return model.Actor{UserID: uuid.New(), TenantID: tenantID, Role: model.RoleLearner}
}

// --- Test SubmitQuiz ---
func Test_syncService_SubmitQuiz(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBSync()

	t.Run("正常系: 採点・提出記録・完了反映が1回の提出で行われる", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonQuiz)
		q1 := seedQuestion(t, db, tenantID, lessonIDs[0], 1, 0)
		q2 := seedQuestion(t, db, tenantID, lessonIDs[0], 2, 1)
		q3 := seedQuestion(t, db, tenantID, lessonIDs[0], 3, 2)

		svc := newSyncService(db, new(mocks.JudgeClient))
		result, err := svc.SubmitQuiz(ctx, actor, lessonIDs[0], &model.SubmitQuizRequest{
			TimeElapsedSec: 120,
			Answers: []model.QuizAnswerRequest{
				{QuestionID: q1, Choice: 0}, // 正解
				{QuestionID: q2, Choice: 1}, // 正解
				{QuestionID: q3, Choice: 0}, // 不正解
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 67, result.Score, "2/3 は四捨五入で67点")
		assert.Equal(t, 2, result.CorrectCount)
		assert.Equal(t, 3, result.TotalQuestions)
		assert.True(t, result.Completed)

		var attempt model.QuizAttempt
		require.NoError(t, db.Where("attempt_id = ?", result.AttemptID).First(&attempt).Error)
		assert.Equal(t, 67, attempt.Score)
		assert.Equal(t, 120, attempt.TimeElapsedSec)

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.True(t, progress.Completed)
	})

	t.Run("正常系: 点数が低くても提出すれば完了になる", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonQuiz)
		q1 := seedQuestion(t, db, tenantID, lessonIDs[0], 1, 0)

		svc := newSyncService(db, new(mocks.JudgeClient))
		result, err := svc.SubmitQuiz(ctx, actor, lessonIDs[0], &model.SubmitQuizRequest{
			Answers: []model.QuizAnswerRequest{{QuestionID: q1, Choice: 3}},
		})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Score)
		assert.True(t, result.Completed)

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.True(t, progress.Completed)
	})

	t.Run("異常系: 設問0件のクイズは構成不備として拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonQuiz)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitQuiz(ctx, actor, lessonIDs[0], &model.SubmitQuizRequest{
			Answers: []model.QuizAnswerRequest{{QuestionID: uuid.New(), Choice: 0}},
		})

		assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
	})

	t.Run("異常系: 存在しない設問への回答は拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonQuiz)
		seedQuestion(t, db, tenantID, lessonIDs[0], 1, 0)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitQuiz(ctx, actor, lessonIDs[0], &model.SubmitQuizRequest{
			Answers: []model.QuizAnswerRequest{{QuestionID: uuid.New(), Choice: 0}},
		})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 施錠中のレッスンへの提出は拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo, model.LessonQuiz)
		seedQuestion(t, db, tenantID, lessonIDs[1], 1, 0)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitQuiz(ctx, actor, lessonIDs[1], &model.SubmitQuizRequest{
			Answers: []model.QuizAnswerRequest{{QuestionID: uuid.New(), Choice: 0}},
		})

		assert.ErrorIs(t, err, model.ErrForbidden)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "LESSON_LOCKED", appErr.Detail.Code)
		assert.Nil(t, loadProgress(t, db, actor, lessonIDs[1]))
	})

	t.Run("異常系: クイズ以外のレッスンへの提出は拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitQuiz(ctx, actor, lessonIDs[0], &model.SubmitQuizRequest{
			Answers: []model.QuizAnswerRequest{{QuestionID: uuid.New(), Choice: 0}},
		})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 存在しないレッスンは404相当", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitQuiz(ctx, actor, uuid.New(), &model.SubmitQuizRequest{
			Answers: []model.QuizAnswerRequest{{QuestionID: uuid.New(), Choice: 0}},
		})

		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

// --- Test SubmitCode ---
func Test_syncService_SubmitCode(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBSync()

	req := &model.SubmitCodeRequest{Language: "go", Code: "package main"}

	t.Run("正常系: 合格判定で提出が記録されレッスンが完了する", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 3, Output: "3\n"}, nil).Once()

		svc := newSyncService(db, judge)
		result, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		require.NoError(t, err)
		assert.Equal(t, 1, result.AttemptNumber)
		assert.Equal(t, model.StatusAccepted, result.Status)
		assert.True(t, result.Passed)
		assert.True(t, result.Completed)

		var submission model.CodingSubmission
		require.NoError(t, db.Where("submission_id = ?", result.SubmissionID).First(&submission).Error)
		assert.Equal(t, model.StatusAccepted, submission.Status)
		assert.True(t, submission.Passed)

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.True(t, progress.Completed)
		judge.AssertExpectations(t)
	})

	t.Run("正常系: 試行番号は提出ごとに1ずつ増える", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 4, Output: "2\n"}, nil).Times(3)

		svc := newSyncService(db, judge)
		for want := 1; want <= 3; want++ {
			result, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)
			require.NoError(t, err)
			assert.Equal(t, want, result.AttemptNumber)
		}
		judge.AssertExpectations(t)
	})

	t.Run("正常系: 採番競合はリトライして次の番号で確定する", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		// 1回目の INSERT は同時提出とぶつかりユニーク制約に弾かれ、
		// リトライで件数を数え直して次の番号を取る想定
		subRepo := new(repomocks.SubmissionRepository)
		subRepo.On("CountByUserAndLesson", mock.Anything, mock.Anything, tenantID, actor.UserID, lessonIDs[0]).
			Return(int64(0), nil).Once()
		subRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.CodingSubmission")).
			Return(model.ErrConflict).Once()
		subRepo.On("CountByUserAndLesson", mock.Anything, mock.Anything, tenantID, actor.UserID, lessonIDs[0]).
			Return(int64(1), nil).Once()
		subRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.CodingSubmission")).
			Return(nil).Once()
		subRepo.On("UpdateVerdict", mock.Anything, mock.Anything, tenantID, mock.AnythingOfType("uuid.UUID"), model.StatusAccepted, true).
			Return(nil).Once()
		subRepo.On("ExistsPassed", mock.Anything, mock.Anything, tenantID, actor.UserID, lessonIDs[0]).
			Return(true, nil).Once()

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 3, Output: "3\n"}, nil).Once()

		svc := NewSyncService(
			db,
			repository.NewGormLessonRepository(),
			repository.NewGormProgressRepository(),
			repository.NewGormQuizRepository(),
			subRepo,
			judge,
		)
		result, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		require.NoError(t, err)
		assert.Equal(t, 2, result.AttemptNumber, "競合後は数え直した次の番号で確定する")
		subRepo.AssertExpectations(t)
		judge.AssertExpectations(t)
	})

	t.Run("異常系: 採番競合がリトライ上限まで続けば競合エラーを返す", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		subRepo := new(repomocks.SubmissionRepository)
		subRepo.On("CountByUserAndLesson", mock.Anything, mock.Anything, tenantID, actor.UserID, lessonIDs[0]).
			Return(int64(0), nil).Times(submitRetries + 1)
		subRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*model.CodingSubmission")).
			Return(model.ErrConflict).Times(submitRetries + 1)

		svc := NewSyncService(
			db,
			repository.NewGormLessonRepository(),
			repository.NewGormProgressRepository(),
			repository.NewGormQuizRepository(),
			subRepo,
			new(mocks.JudgeClient),
		)
		_, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		assert.ErrorIs(t, err, model.ErrConflict)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Detail.Code)
		subRepo.AssertExpectations(t)
	})

	t.Run("正常系: 合格提出が残っていれば不合格判定でも完了は維持される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])
		// 過去に合格した提出が履歴に残っている状態
		require.NoError(t, db.Create(&model.CodingSubmission{
			SubmissionID:  uuid.New(),
			TenantID:      tenantID,
			LessonID:      lessonIDs[0],
			UserID:        actor.UserID,
			AttemptNumber: 1,
			Language:      "go",
			Code:          "package main",
			Status:        model.StatusAccepted,
			Passed:        true,
		}).Error)
		markCompleted(t, db, actor, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 4, Output: "2\n"}, nil).Once()

		svc := newSyncService(db, judge)
		result, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		require.NoError(t, err)
		assert.Equal(t, 2, result.AttemptNumber)
		assert.False(t, result.Passed)
		assert.True(t, result.Completed, "履歴に合格が残るため完了のまま")

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.True(t, progress.Completed)
	})

	t.Run("正常系: 合格提出が残っていなければ不合格判定で完了が取り消される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])
		// 進捗行は完了を示すが、合格した提出は履歴に1件もない状態
		markCompleted(t, db, actor, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 4, Output: "2\n"}, nil).Once()

		svc := newSyncService(db, judge)
		result, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		require.NoError(t, err)
		assert.False(t, result.Passed)
		assert.False(t, result.Completed)

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.False(t, progress.Completed, "提出履歴から再導出され未完了に戻る")
	})

	t.Run("正常系: 実行時エラー系のコードは runtime_error に集約される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 9, Output: "SIGSEGV"}, nil).Once()

		svc := newSyncService(db, judge)
		result, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		require.NoError(t, err)
		assert.Equal(t, model.StatusRuntimeError, result.Status)
		assert.False(t, result.Passed)
	})

	t.Run("異常系: ジャッジ障害でも提出は in_queue で残り進捗は触らない", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(nil, model.ErrExternalService).Once()

		svc := newSyncService(db, judge)
		_, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		assert.ErrorIs(t, err, model.ErrExternalService)

		var submission model.CodingSubmission
		require.NoError(t, db.Where("tenant_id = ? AND lesson_id = ? AND user_id = ?", tenantID, lessonIDs[0], actor.UserID).
			First(&submission).Error)
		assert.Equal(t, model.StatusInQueue, submission.Status, "提出自体は残る")
		assert.Nil(t, loadProgress(t, db, actor, lessonIDs[0]))
	})

	t.Run("異常系: ジャッジの未知のステータスコードは外部サービスエラー扱い", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[0])

		judge := new(mocks.JudgeClient)
		judge.On("Execute", mock.Anything, mock.AnythingOfType("*model.JudgeRequest")).
			Return(&model.JudgeResult{StatusCode: 99}, nil).Once()

		svc := newSyncService(db, judge)
		_, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		assert.ErrorIs(t, err, model.ErrExternalService)
		assert.Nil(t, loadProgress(t, db, actor, lessonIDs[0]))
	})

	t.Run("異常系: 課題未設定のコーディングレッスンは構成不備", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitCode(ctx, actor, lessonIDs[0], req)

		assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
	})

	t.Run("異常系: 施錠中のレッスンへの提出は拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo, model.LessonCoding)
		seedExercise(t, db, tenantID, lessonIDs[1])

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.SubmitCode(ctx, actor, lessonIDs[1], req)

		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

// --- Test ReconcileCodingProgress ---
func Test_syncService_ReconcileCodingProgress(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBSync()

	t.Run("正常系: 合格提出があれば完了として再導出される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		require.NoError(t, db.Create(&model.CodingSubmission{
			SubmissionID:  uuid.New(),
			TenantID:      tenantID,
			LessonID:      lessonIDs[0],
			UserID:        actor.UserID,
			AttemptNumber: 1,
			Language:      "go",
			Code:          "package main",
			Status:        model.StatusAccepted,
			Passed:        true,
		}).Error)

		svc := newSyncService(db, new(mocks.JudgeClient))

		// 何度呼んでも同じ結果になる
		for i := 0; i < 2; i++ {
			completed, err := svc.ReconcileCodingProgress(ctx, actor, lessonIDs[0])
			require.NoError(t, err)
			assert.True(t, completed)
		}

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.True(t, progress.Completed)
	})

	t.Run("正常系: 合格提出が消えていれば未完了へ戻る", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonCoding)
		markCompleted(t, db, actor, lessonIDs[0])

		svc := newSyncService(db, new(mocks.JudgeClient))
		completed, err := svc.ReconcileCodingProgress(ctx, actor, lessonIDs[0])

		require.NoError(t, err)
		assert.False(t, completed)

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.False(t, progress.Completed, "提出履歴が正となり完了が取り消される")
	})

	t.Run("異常系: コーディング以外のレッスンは拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonQuiz)

		svc := newSyncService(db, new(mocks.JudgeClient))
		_, err := svc.ReconcileCodingProgress(ctx, actor, lessonIDs[0])

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

// --- Test CompleteVideoLesson ---
func Test_syncService_CompleteVideoLesson(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBSync()

	t.Run("正常系: 動画レッスンの完了操作で進捗が記録され次が解錠される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo, model.LessonVideo)

		svc := newSyncService(db, new(mocks.JudgeClient))
		require.NoError(t, svc.CompleteVideoLesson(ctx, actor, lessonIDs[0]))

		progress := loadProgress(t, db, actor, lessonIDs[0])
		require.NotNil(t, progress)
		assert.True(t, progress.Completed)

		// 1本目の完了で2本目が解錠されている
		assert.NoError(t, svc.CompleteVideoLesson(ctx, actor, lessonIDs[1]))
	})

	t.Run("異常系: 施錠中の動画は完了にできない", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo, model.LessonVideo)

		err := newSyncService(db, new(mocks.JudgeClient)).CompleteVideoLesson(ctx, actor, lessonIDs[1])

		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("異常系: 動画以外のレッスンへの完了操作は拒否される", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonQuiz)
		seedQuestion(t, db, tenantID, lessonIDs[0], 1, 0)

		err := newSyncService(db, new(mocks.JudgeClient)).CompleteVideoLesson(ctx, actor, lessonIDs[0])

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}
