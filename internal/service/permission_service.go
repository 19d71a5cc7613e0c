package service

import (
	"context"
	"errors"

	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockery --name PermissionService --output ./mocks --outpkg mocks --case=underscore

// PermissionService はコンテンツ管理操作の認可判定です。
// 判定は状態を持たず、毎回のリクエストで委譲をDBから読み直す
// (失効が次のリクエストに即時反映されるのが保証事項)。
type PermissionService interface {
	// Authorize は actor が course に対して (resource, action) を行えるか判定します。
	// courseID が uuid.Nil の場合はコース作成などのテナントレベル操作。
	// 拒否は *model.PermissionDeniedError (403)。
	Authorize(ctx context.Context, actor model.Actor, courseID uuid.UUID, resource model.Resource, action model.Action) error
}

type permissionService struct {
	db         *gorm.DB
	courseRepo repository.CourseRepository
	grantRepo  repository.GrantRepository
}

func NewPermissionService(db *gorm.DB, courseRepo repository.CourseRepository, grantRepo repository.GrantRepository) PermissionService {
	return &permissionService{
		db:         db,
		courseRepo: courseRepo,
		grantRepo:  grantRepo,
	}
}

// Authorize の役割ごとのルールはこの switch に集約されています。
// 役割を追加する場合はここに case を足すこと。
func (s *permissionService) Authorize(ctx context.Context, actor model.Actor, courseID uuid.UUID, resource model.Resource, action model.Action) error {
	logger := middleware.GetLogger(ctx)

	switch actor.Role {
	case model.RoleAdmin:
		// 管理者は自テナント内のすべての操作が可能。
		// テナント境界はリポジトリの tenant_id 条件が守る。
		return nil

	case model.RoleInstructor:
		// コース作成はコースがまだ存在しないので無条件に許可
		if resource == model.ResourceCourse && action == model.ActionCreate {
			return nil
		}
		if courseID == uuid.Nil {
			return model.NewPermissionDenied(resource, action)
		}
		assigned, err := s.courseRepo.IsInstructor(ctx, s.db, actor.TenantID, courseID, actor.UserID)
		if err != nil {
			logger.Error("Failed to check instructor assignment", "error", err, "course_id", courseID)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "認可判定中にエラーが発生しました。", "", err)
		}
		if !assigned {
			return model.NewPermissionDenied(resource, action)
		}
		// 担当コースではレッスン・クイズは全アクション可。コース自体は
		// 更新・公開・アシスタント委譲・講師割り当てのみで、削除などは不可。
		switch resource {
		case model.ResourceLesson, model.ResourceQuiz:
			return nil
		case model.ResourceCourse:
			switch action {
			case model.ActionUpdate, model.ActionPublish, model.ActionAssignAssistant, model.ActionAssignInstructor:
				return nil
			}
		}
		return model.NewPermissionDenied(resource, action)

	case model.RoleAssistant:
		// アシスタントは委譲された権限の範囲内のみ。委譲は毎回読み直す。
		if courseID == uuid.Nil {
			return model.NewPermissionDenied(resource, action)
		}
		grant, err := s.grantRepo.FindByCourseAndUser(ctx, s.db, actor.TenantID, courseID, actor.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewPermissionDenied(resource, action)
			}
			logger.Error("Failed to load permission grant", "error", err, "course_id", courseID)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "認可判定中にエラーが発生しました。", "", err)
		}
		if !grant.Allows(resource, action) {
			return model.NewPermissionDenied(resource, action)
		}
		return nil

	case model.RoleLearner:
		return model.NewPermissionDenied(resource, action)

	default:
		logger.Error("Unknown role in authorization", "role", actor.Role, "user_id", actor.UserID)
		return model.NewPermissionDenied(resource, action)
	}
}
