package service

import (
	"context"
	"testing"

	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
func setupTestDBCourse() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // 課題の二重登録検出に必要
	})
	if err != nil {
		panic("failed to connect database for course service testing: " + err.Error())
	}
	err = db.AutoMigrate(
		&model.Tenant{}, &model.User{},
		&model.Course{}, &model.CourseInstructor{},
		&model.Chapter{}, &model.Lesson{},
		&model.QuizQuestion{}, &model.CodingExercise{},
		&model.PermissionGrant{}, &model.LessonProgress{},
	)
	if err != nil {
		panic("failed to migrate database for course service testing: " + err.Error())
	}
	return db
}

func newCourseService(db *gorm.DB) CourseService {
	courseRepo := repository.NewGormCourseRepository()
	grantRepo := repository.NewGormGrantRepository()
	return NewCourseService(
		db,
		courseRepo,
		repository.NewGormLessonRepository(),
		repository.NewGormUserRepository(),
		grantRepo,
		NewPermissionService(db, courseRepo, grantRepo),
	)
}

func seedUser(t *testing.T, db *gorm.DB, tenantID uuid.UUID, role model.Role) model.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &model.User{
		UserID:       uuid.New(),
		TenantID:     tenantID,
		Name:         "テストユーザー",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return model.Actor{UserID: user.UserID, TenantID: tenantID, Role: role}
}

func lessonPositions(t *testing.T, db *gorm.DB, chapterID uuid.UUID) map[string]int {
	t.Helper()
	var lessons []model.Lesson
	require.NoError(t, db.Where("chapter_id = ?", chapterID).Order("position ASC").Find(&lessons).Error)
	out := make(map[string]int, len(lessons))
	for _, l := range lessons {
		out[l.Title] = l.Position
	}
	return out
}

func Test_courseService_CreateCourse(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	t.Run("正常系: instructor が作成すると自動的に担当講師になる", func(t *testing.T) {
		tenantID := uuid.New()
		instructor := seedUser(t, db, tenantID, model.RoleInstructor)

		course, err := svc.CreateCourse(ctx, instructor, &model.CreateCourseRequest{Title: "Go入門"})

		require.NoError(t, err)
		assert.Equal(t, model.CourseDraft, course.Status)

		var link model.CourseInstructor
		require.NoError(t, db.Where("course_id = ? AND user_id = ?", course.CourseID, instructor.UserID).First(&link).Error)
	})

	t.Run("正常系: admin が作成しても講師割り当ては増えない", func(t *testing.T) {
		tenantID := uuid.New()
		admin := seedUser(t, db, tenantID, model.RoleAdmin)

		course, err := svc.CreateCourse(ctx, admin, &model.CreateCourseRequest{Title: "管理者のコース"})

		require.NoError(t, err)
		var count int64
		require.NoError(t, db.Model(&model.CourseInstructor{}).Where("course_id = ?", course.CourseID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("異常系: learner は作成できない", func(t *testing.T) {
		tenantID := uuid.New()
		learner := seedUser(t, db, tenantID, model.RoleLearner)

		_, err := svc.CreateCourse(ctx, learner, &model.CreateCourseRequest{Title: "不正なコース"})

		var denied *model.PermissionDeniedError
		require.ErrorAs(t, err, &denied)
	})
}

func Test_courseService_Publish(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	setup := func(t *testing.T) (model.Actor, *model.Course, *model.Lesson) {
		tenantID := uuid.New()
		instructor := seedUser(t, db, tenantID, model.RoleInstructor)
		course, err := svc.CreateCourse(ctx, instructor, &model.CreateCourseRequest{Title: "公開テスト"})
		require.NoError(t, err)
		chapter, err := svc.AddChapter(ctx, instructor, course.CourseID, &model.CreateChapterRequest{Title: "第1章"})
		require.NoError(t, err)
		quiz, err := svc.AddLesson(ctx, instructor, chapter.ChapterID, &model.CreateLessonRequest{
			Title: "理解度チェック", Type: model.LessonQuiz,
		})
		require.NoError(t, err)
		return instructor, course, quiz
	}

	t.Run("異常系: 設問のないクイズレッスンがあると公開できない", func(t *testing.T) {
		instructor, course, _ := setup(t)

		err := svc.Publish(ctx, instructor, course.CourseID)

		assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

		var got model.Course
		require.NoError(t, db.Where("course_id = ?", course.CourseID).First(&got).Error)
		assert.Equal(t, model.CourseDraft, got.Status, "下書きのまま")
	})

	t.Run("正常系: 設問を追加すれば公開できる", func(t *testing.T) {
		instructor, course, quiz := setup(t)
		_, err := svc.AddQuestion(ctx, instructor, quiz.LessonID, &AddQuestionRequest{
			Prompt:        "Goの作者は?",
			Choices:       []string{"Rob Pike", "Guido van Rossum"},
			CorrectChoice: 0,
		})
		require.NoError(t, err)

		require.NoError(t, svc.Publish(ctx, instructor, course.CourseID))

		var got model.Course
		require.NoError(t, db.Where("course_id = ?", course.CourseID).First(&got).Error)
		assert.Equal(t, model.CoursePublished, got.Status)
	})

	t.Run("異常系: 担当外の instructor は公開できない", func(t *testing.T) {
		_, course, _ := setup(t)
		outsider := seedUser(t, db, course.TenantID, model.RoleInstructor)

		err := svc.Publish(ctx, outsider, course.CourseID)

		var denied *model.PermissionDeniedError
		require.ErrorAs(t, err, &denied)
	})
}

func Test_courseService_AssignInstructor(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	tenantID := uuid.New()
	admin := seedUser(t, db, tenantID, model.RoleAdmin)
	owner := seedUser(t, db, tenantID, model.RoleInstructor)
	course, err := svc.CreateCourse(ctx, owner, &model.CreateCourseRequest{Title: "講師割り当てテスト"})
	require.NoError(t, err)

	t.Run("正常系: admin は講師を割り当てられる", func(t *testing.T) {
		target := seedUser(t, db, tenantID, model.RoleInstructor)

		require.NoError(t, svc.AssignInstructor(ctx, admin, course.CourseID, &model.AssignInstructorRequest{UserID: target.UserID}))

		var link model.CourseInstructor
		require.NoError(t, db.Where("course_id = ? AND user_id = ?", course.CourseID, target.UserID).First(&link).Error)
	})

	t.Run("正常系: 担当講師は同僚の講師を割り当てられる", func(t *testing.T) {
		target := seedUser(t, db, tenantID, model.RoleInstructor)

		require.NoError(t, svc.AssignInstructor(ctx, owner, course.CourseID, &model.AssignInstructorRequest{UserID: target.UserID}))

		var link model.CourseInstructor
		require.NoError(t, db.Where("course_id = ? AND user_id = ?", course.CourseID, target.UserID).First(&link).Error)
	})

	t.Run("異常系: 担当外の instructor は講師を割り当てられない", func(t *testing.T) {
		outsider := seedUser(t, db, tenantID, model.RoleInstructor)
		target := seedUser(t, db, tenantID, model.RoleInstructor)

		err := svc.AssignInstructor(ctx, outsider, course.CourseID, &model.AssignInstructorRequest{UserID: target.UserID})

		var denied *model.PermissionDeniedError
		require.ErrorAs(t, err, &denied)
	})

	t.Run("異常系: 講師ロール以外は割り当てられない", func(t *testing.T) {
		target := seedUser(t, db, tenantID, model.RoleLearner)

		err := svc.AssignInstructor(ctx, admin, course.CourseID, &model.AssignInstructorRequest{UserID: target.UserID})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 二重割り当ては競合になる", func(t *testing.T) {
		target := seedUser(t, db, tenantID, model.RoleInstructor)
		require.NoError(t, svc.AssignInstructor(ctx, admin, course.CourseID, &model.AssignInstructorRequest{UserID: target.UserID}))

		err := svc.AssignInstructor(ctx, admin, course.CourseID, &model.AssignInstructorRequest{UserID: target.UserID})

		assert.ErrorIs(t, err, model.ErrConflict)
	})
}

func Test_courseService_Lessons(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	setup := func(t *testing.T) (model.Actor, *model.Chapter) {
		tenantID := uuid.New()
		instructor := seedUser(t, db, tenantID, model.RoleInstructor)
		course, err := svc.CreateCourse(ctx, instructor, &model.CreateCourseRequest{Title: "構成テスト"})
		require.NoError(t, err)
		chapter, err := svc.AddChapter(ctx, instructor, course.CourseID, &model.CreateChapterRequest{Title: "第1章"})
		require.NoError(t, err)
		return instructor, chapter
	}

	videoURL := "https://example.com/v.mp4"
	addVideo := func(t *testing.T, actor model.Actor, chapterID uuid.UUID, title string) *model.Lesson {
		lesson, err := svc.AddLesson(ctx, actor, chapterID, &model.CreateLessonRequest{
			Title: title, Type: model.LessonVideo, VideoURL: &videoURL,
		})
		require.NoError(t, err)
		return lesson
	}

	t.Run("正常系: レッスンは末尾に1始まりの連番で追加される", func(t *testing.T) {
		instructor, chapter := setup(t)

		l1 := addVideo(t, instructor, chapter.ChapterID, "a")
		l2 := addVideo(t, instructor, chapter.ChapterID, "b")

		assert.Equal(t, 1, l1.Position)
		assert.Equal(t, 2, l2.Position)
	})

	t.Run("異常系: 動画レッスンには動画URLが必須", func(t *testing.T) {
		instructor, chapter := setup(t)

		_, err := svc.AddLesson(ctx, instructor, chapter.ChapterID, &model.CreateLessonRequest{
			Title: "URLなし", Type: model.LessonVideo,
		})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("正常系: 削除すると後続の表示順が詰まり連番が保たれる", func(t *testing.T) {
		instructor, chapter := setup(t)
		addVideo(t, instructor, chapter.ChapterID, "a")
		l2 := addVideo(t, instructor, chapter.ChapterID, "b")
		addVideo(t, instructor, chapter.ChapterID, "c")

		require.NoError(t, svc.DeleteLesson(ctx, instructor, l2.LessonID))

		positions := lessonPositions(t, db, chapter.ChapterID)
		assert.Equal(t, map[string]int{"a": 1, "c": 2}, positions)
	})

	t.Run("正常系: 並び替えで間のレッスンがずれて連番が保たれる", func(t *testing.T) {
		instructor, chapter := setup(t)
		addVideo(t, instructor, chapter.ChapterID, "a")
		addVideo(t, instructor, chapter.ChapterID, "b")
		l3 := addVideo(t, instructor, chapter.ChapterID, "c")

		require.NoError(t, svc.ReorderLesson(ctx, instructor, l3.LessonID, &model.ReorderLessonRequest{Position: 1}))

		positions := lessonPositions(t, db, chapter.ChapterID)
		assert.Equal(t, map[string]int{"c": 1, "a": 2, "b": 3}, positions)
	})

	t.Run("異常系: 範囲外の表示順への並び替えは拒否される", func(t *testing.T) {
		instructor, chapter := setup(t)
		l1 := addVideo(t, instructor, chapter.ChapterID, "a")

		err := svc.ReorderLesson(ctx, instructor, l1.LessonID, &model.ReorderLessonRequest{Position: 5})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_courseService_Questions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	tenantID := uuid.New()
	instructor := seedUser(t, db, tenantID, model.RoleInstructor)
	course, err := svc.CreateCourse(ctx, instructor, &model.CreateCourseRequest{Title: "クイズ編集"})
	require.NoError(t, err)
	chapter, err := svc.AddChapter(ctx, instructor, course.CourseID, &model.CreateChapterRequest{Title: "第1章"})
	require.NoError(t, err)
	quiz, err := svc.AddLesson(ctx, instructor, chapter.ChapterID, &model.CreateLessonRequest{Title: "小テスト", Type: model.LessonQuiz})
	require.NoError(t, err)

	t.Run("正常系: 設問は末尾に連番で追加される", func(t *testing.T) {
		q1, err := svc.AddQuestion(ctx, instructor, quiz.LessonID, &AddQuestionRequest{
			Prompt: "1問目", Choices: []string{"A", "B"}, CorrectChoice: 0,
		})
		require.NoError(t, err)
		q2, err := svc.AddQuestion(ctx, instructor, quiz.LessonID, &AddQuestionRequest{
			Prompt: "2問目", Choices: []string{"A", "B"}, CorrectChoice: 1,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, q1.Position)
		assert.Equal(t, 2, q2.Position)
	})

	t.Run("異常系: 正解の選択肢が範囲外なら拒否される", func(t *testing.T) {
		_, err := svc.AddQuestion(ctx, instructor, quiz.LessonID, &AddQuestionRequest{
			Prompt: "壊れた設問", Choices: []string{"A", "B"}, CorrectChoice: 2,
		})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_courseService_Exercise(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	tenantID := uuid.New()
	instructor := seedUser(t, db, tenantID, model.RoleInstructor)
	course, err := svc.CreateCourse(ctx, instructor, &model.CreateCourseRequest{Title: "課題編集"})
	require.NoError(t, err)
	chapter, err := svc.AddChapter(ctx, instructor, course.CourseID, &model.CreateChapterRequest{Title: "第1章"})
	require.NoError(t, err)
	coding, err := svc.AddLesson(ctx, instructor, chapter.ChapterID, &model.CreateLessonRequest{Title: "演習", Type: model.LessonCoding})
	require.NoError(t, err)

	t.Run("正常系: 課題を設定できる", func(t *testing.T) {
		exercise, err := svc.AddExercise(ctx, instructor, coding.LessonID, &AddExerciseRequest{
			Language: "go", StarterCode: "package main", Stdin: "1 2\n",
		})

		require.NoError(t, err)
		assert.Equal(t, coding.LessonID, exercise.LessonID)
	})

	t.Run("異常系: 課題の二重設定は競合になる", func(t *testing.T) {
		_, err := svc.AddExercise(ctx, instructor, coding.LessonID, &AddExerciseRequest{Language: "go"})

		assert.ErrorIs(t, err, model.ErrConflict)
	})
}

// 委譲の付与から行使、失効までの一連の流れ
func Test_courseService_Grants(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBCourse()
	svc := newCourseService(db)

	tenantID := uuid.New()
	instructor := seedUser(t, db, tenantID, model.RoleInstructor)
	assistant := seedUser(t, db, tenantID, model.RoleAssistant)
	course, err := svc.CreateCourse(ctx, instructor, &model.CreateCourseRequest{Title: "委譲テスト"})
	require.NoError(t, err)
	chapter, err := svc.AddChapter(ctx, instructor, course.CourseID, &model.CreateChapterRequest{Title: "第1章"})
	require.NoError(t, err)

	videoURL := "https://example.com/v.mp4"
	addLessonAsAssistant := func() error {
		_, err := svc.AddLesson(ctx, assistant, chapter.ChapterID, &model.CreateLessonRequest{
			Title: "アシスタントのレッスン", Type: model.LessonVideo, VideoURL: &videoURL,
		})
		return err
	}

	t.Run("異常系: 委譲前のアシスタントは操作できない", func(t *testing.T) {
		var denied *model.PermissionDeniedError
		require.ErrorAs(t, addLessonAsAssistant(), &denied)
	})

	t.Run("正常系: 委譲されたアクションだけが行使できる", func(t *testing.T) {
		require.NoError(t, svc.UpsertGrant(ctx, instructor, course.CourseID, &model.UpsertGrantRequest{
			UserID: assistant.UserID,
			Permissions: model.GrantedPermissions{
				model.ResourceLesson: {model.ActionCreate},
			},
		}))

		require.NoError(t, addLessonAsAssistant())

		// 委譲外のアクション (削除) は拒否される
		var lesson model.Lesson
		require.NoError(t, db.Where("chapter_id = ? AND title = ?", chapter.ChapterID, "アシスタントのレッスン").First(&lesson).Error)
		var denied *model.PermissionDeniedError
		require.ErrorAs(t, svc.DeleteLesson(ctx, assistant, lesson.LessonID), &denied)
	})

	t.Run("正常系: 失効は次の操作から即時反映される", func(t *testing.T) {
		require.NoError(t, svc.RevokeGrant(ctx, instructor, course.CourseID, assistant.UserID))

		var denied *model.PermissionDeniedError
		require.ErrorAs(t, addLessonAsAssistant(), &denied)
	})

	t.Run("異常系: アシスタント以外への委譲は拒否される", func(t *testing.T) {
		learner := seedUser(t, db, tenantID, model.RoleLearner)

		err := svc.UpsertGrant(ctx, instructor, course.CourseID, &model.UpsertGrantRequest{
			UserID:      learner.UserID,
			Permissions: model.GrantedPermissions{model.ResourceLesson: {model.ActionCreate}},
		})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 存在しない委譲の取り消しは404相当", func(t *testing.T) {
		err := svc.RevokeGrant(ctx, instructor, course.CourseID, uuid.New())

		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
