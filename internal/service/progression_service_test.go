package service

import (
	"context"
	"testing"

	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テスト用に章とレッスンの骨組みを組み立てる
func buildChapter(title string, position int, lessons ...model.Lesson) *model.Chapter {
	return &model.Chapter{
		ChapterID: uuid.New(),
		CourseID:  uuid.New(),
		Title:     title,
		Position:  position,
		Lessons:   lessons,
	}
}

func buildLesson(title string, position int) model.Lesson {
	return model.Lesson{
		LessonID: uuid.New(),
		Title:    title,
		Type:     model.LessonVideo,
		Position: position,
	}
}

func flattenStates(states []model.ChapterState) []model.LessonState {
	var out []model.LessonState
	for _, cs := range states {
		out = append(out, cs.Lessons...)
	}
	return out
}

func TestComputeLockStates(t *testing.T) {
	t.Run("正常系: 進捗なしでは先頭レッスンだけが解錠される", func(t *testing.T) {
		l1 := buildLesson("導入", 1)
		l2 := buildLesson("変数", 2)
		l3 := buildLesson("関数", 3)
		chapters := []*model.Chapter{buildChapter("基礎", 1, l1, l2, l3)}

		states := ComputeLockStates(chapters, map[uuid.UUID]bool{})

		lessons := flattenStates(states)
		require.Len(t, lessons, 3)
		assert.False(t, lessons[0].IsLocked)
		assert.True(t, lessons[1].IsLocked)
		assert.True(t, lessons[2].IsLocked)
	})

	t.Run("正常系: 完了が進むと次のレッスンが解錠される", func(t *testing.T) {
		l1 := buildLesson("導入", 1)
		l2 := buildLesson("変数", 2)
		l3 := buildLesson("関数", 3)
		chapters := []*model.Chapter{buildChapter("基礎", 1, l1, l2, l3)}

		states := ComputeLockStates(chapters, map[uuid.UUID]bool{
			l1.LessonID: true,
		})

		lessons := flattenStates(states)
		require.Len(t, lessons, 3)
		assert.True(t, lessons[0].Completed)
		assert.False(t, lessons[0].IsLocked)
		assert.False(t, lessons[1].IsLocked, "直前まで完了しているので解錠")
		assert.True(t, lessons[2].IsLocked, "未完了レッスンの次は施錠のまま")
	})

	t.Run("正常系: 解錠の列は章をまたいで連続する", func(t *testing.T) {
		l1 := buildLesson("導入", 1)
		l2 := buildLesson("変数", 2)
		l3 := buildLesson("応用1", 1)
		l4 := buildLesson("応用2", 2)
		chapters := []*model.Chapter{
			buildChapter("基礎", 1, l1, l2),
			buildChapter("応用", 2, l3, l4),
		}

		states := ComputeLockStates(chapters, map[uuid.UUID]bool{
			l1.LessonID: true,
			l2.LessonID: true,
		})

		lessons := flattenStates(states)
		require.Len(t, lessons, 4)
		assert.False(t, lessons[2].IsLocked, "第1章をすべて完了したので第2章の先頭は解錠")
		assert.True(t, lessons[3].IsLocked)
	})

	t.Run("正常系: 完了済みレッスンも前方に未完了があれば施錠される", func(t *testing.T) {
		// 完了後にレッスンが前方へ挿入・並び替えされた場合の状態。
		// ロックは前方の完了だけで決まり、自身の古い完了では解錠されない。
		l1 := buildLesson("追加された導入", 1)
		l2 := buildLesson("変数", 2)
		l3 := buildLesson("関数", 3)
		chapters := []*model.Chapter{buildChapter("基礎", 1, l1, l2, l3)}

		states := ComputeLockStates(chapters, map[uuid.UUID]bool{
			l2.LessonID: true,
		})

		lessons := flattenStates(states)
		require.Len(t, lessons, 3)
		assert.False(t, lessons[0].IsLocked)
		assert.True(t, lessons[1].IsLocked, "完了済みでも前方が未完了なら施錠")
		assert.True(t, lessons[1].Completed, "完了の記録自体は残る")
		assert.True(t, lessons[2].IsLocked, "前方に未完了があるので後続は施錠")
	})

	t.Run("正常系: 全レッスン完了ですべて解錠", func(t *testing.T) {
		l1 := buildLesson("導入", 1)
		l2 := buildLesson("変数", 2)
		chapters := []*model.Chapter{buildChapter("基礎", 1, l1, l2)}

		states := ComputeLockStates(chapters, map[uuid.UUID]bool{
			l1.LessonID: true,
			l2.LessonID: true,
		})

		for _, ls := range flattenStates(states) {
			assert.False(t, ls.IsLocked)
			assert.True(t, ls.Completed)
		}
	})

	t.Run("正常系: 章もレッスンもない場合は空のまま", func(t *testing.T) {
		states := ComputeLockStates(nil, map[uuid.UUID]bool{})
		assert.Empty(t, states)

		states = ComputeLockStates([]*model.Chapter{buildChapter("空の章", 1)}, nil)
		require.Len(t, states, 1)
		assert.Empty(t, states[0].Lessons)
	})
}

func newProgressionService(db *gorm.DB) ProgressionService {
	return NewProgressionService(
		db,
		repository.NewGormCourseRepository(),
		repository.NewGormLessonRepository(),
		repository.NewGormProgressRepository(),
	)
}

func Test_progressionService_GetCourseContent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBSync()

	t.Run("正常系: 章・レッスンがロック状態と完了率付きで返る", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo, model.LessonVideo, model.LessonVideo)
		markCompleted(t, db, actor, lessonIDs[0])

		var course model.Course
		require.NoError(t, db.Where("tenant_id = ?", tenantID).First(&course).Error)

		svc := newProgressionService(db)
		content, err := svc.GetCourseContent(ctx, actor, course.CourseID)

		require.NoError(t, err)
		assert.Equal(t, 33, content.CompletionPercent, "1/3 完了で33%")
		lessons := flattenStates(content.Chapters)
		require.Len(t, lessons, 3)
		assert.True(t, lessons[0].Completed)
		assert.False(t, lessons[1].IsLocked)
		assert.True(t, lessons[2].IsLocked)
	})

	t.Run("異常系: 下書きコースは学習者には存在しない扱い", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(tenantID)
		course := &model.Course{
			CourseID: uuid.New(),
			TenantID: tenantID,
			Title:    "未公開コース",
			Status:   model.CourseDraft,
		}
		require.NoError(t, db.Create(course).Error)

		svc := newProgressionService(db)
		_, err := svc.GetCourseContent(ctx, actor, course.CourseID)

		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("正常系: instructor は下書きコースを閲覧できる", func(t *testing.T) {
		tenantID := uuid.New()
		course := &model.Course{
			CourseID: uuid.New(),
			TenantID: tenantID,
			Title:    "編集中コース",
			Status:   model.CourseDraft,
		}
		require.NoError(t, db.Create(course).Error)
		instructor := model.Actor{UserID: uuid.New(), TenantID: tenantID, Role: model.RoleInstructor}

		svc := newProgressionService(db)
		content, err := svc.GetCourseContent(ctx, instructor, course.CourseID)

		require.NoError(t, err)
		assert.Equal(t, 0, content.CompletionPercent)
	})

	t.Run("異常系: 他テナントのコースは見えない", func(t *testing.T) {
		tenantID := uuid.New()
		actor := learnerActor(uuid.New()) // 別テナントの学習者
		lessonIDs := seedCourseWithLessons(t, db, tenantID, model.LessonVideo)
		_ = lessonIDs

		var course model.Course
		require.NoError(t, db.Where("tenant_id = ?", tenantID).First(&course).Error)

		svc := newProgressionService(db)
		_, err := svc.GetCourseContent(ctx, actor, course.CourseID)

		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		want      int
	}{
		{name: "正常系: 0件のコースは0%", total: 0, completed: 0, want: 0},
		{name: "正常系: 未着手は0%", total: 4, completed: 0, want: 0},
		{name: "正常系: 半分で50%", total: 4, completed: 2, want: 50},
		{name: "正常系: 全完了で100%", total: 4, completed: 4, want: 100},
		{name: "正常系: 1/3 は四捨五入で33%", total: 3, completed: 1, want: 33},
		{name: "正常系: 2/3 は四捨五入で67%", total: 3, completed: 2, want: 67},
		{name: "正常系: 1/8 は四捨五入で13%", total: 8, completed: 1, want: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionPercent(tt.total, tt.completed))
		})
	}
}
