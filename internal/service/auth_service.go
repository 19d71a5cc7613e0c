package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockery --name AuthService --output ./mocks --outpkg mocks --case=underscore

// AuthService はテナント内のユーザー登録・認証・役割変更です
type AuthService interface {
	Signup(ctx context.Context, tenant *model.Tenant, req *model.SignupRequest) (*model.User, error)
	// Login は認証に成功すると JWT を返します。トークンには役割と
	// テナントID・現在の slug が含まれ、slug はミドルウェアで毎回照合される。
	Login(ctx context.Context, tenant *model.Tenant, req *model.LoginRequest) (*model.LoginResponse, error)
	// AssignRole はユーザーの役割を変更します (admin のみ)
	AssignRole(ctx context.Context, actor model.Actor, userID uuid.UUID, req *model.AssignRoleRequest) error
}

type authService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		db:       db,
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// Signup は新しいユーザーを登録し、ウェルカムメールを送信します。
// テナント最初のユーザーは admin、以降は learner で登録される。
func (s *authService) Signup(ctx context.Context, tenant *model.Tenant, req *model.SignupRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)
	var newUser *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Emailでの重複チェック
		_, err := s.userRepo.FindByEmail(ctx, tx, tenant.TenantID, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check email existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}

		// パスワードのハッシュ化
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
		}

		var count int64
		if err := tx.Model(&model.User{}).Where("tenant_id = ?", tenant.TenantID).Count(&count).Error; err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}
		role := model.RoleLearner
		if count == 0 {
			role = model.RoleAdmin
		}

		user := &model.User{
			UserID:       uuid.New(),
			TenantID:     tenant.TenantID,
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hashedPassword),
			Role:         role,
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// Create内で重複エラーが検知された場合 (レースコンディション対策)
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during user creation (race condition)", "error", err)
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Failed to create user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}
		newUser = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	// ウェルカムメールの失敗は登録を巻き戻さない
	if err := s.sendWelcomeEmail(ctx, tenant, newUser); err != nil {
		logger.Warn("Failed to send welcome email", "error", err, "email", newUser.Email)
	}

	logger.Info("User signed up", "user_id", newUser.UserID, "role", newUser.Role)
	return newUser, nil
}

func (s *authService) Login(ctx context.Context, tenant *model.Tenant, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, tenant.TenantID, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthenticated)
		}
		logger.Error("Login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		logger.Warn("Login failed: password mismatch", "user_id", user.UserID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthenticated)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":                 config.AppName,
		"sub":                 user.UserID.String(),
		"iat":                 jwt.NewNumericDate(now),
		"exp":                 jwt.NewNumericDate(now.Add(time.Duration(s.cfg.JWT.ExpiryHours) * time.Hour)),
		model.ClaimRole:       string(user.Role),
		model.ClaimTenantID:   tenant.TenantID.String(),
		model.ClaimTenantSlug: tenant.Slug,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign JWT", "error", err, "user_id", user.UserID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	logger.Info("Login successful", "user_id", user.UserID, "role", user.Role)
	return &model.LoginResponse{AccessToken: signedToken}, nil
}

func (s *authService) AssignRole(ctx context.Context, actor model.Actor, userID uuid.UUID, req *model.AssignRoleRequest) error {
	logger := middleware.GetLogger(ctx)

	if actor.Role != model.RoleAdmin {
		logger.Warn("Role assignment denied: actor is not admin", "user_id", actor.UserID, "role", actor.Role)
		return model.NewAppError("FORBIDDEN", "役割の変更は管理者のみ可能です。", "", model.ErrForbidden)
	}
	if actor.UserID == userID {
		return model.NewAppError("INVALID_INPUT", "自分自身の役割は変更できません。", "user_id", model.ErrInvalidInput)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.UpdateRole(ctx, tx, actor.TenantID, userID, req.Role)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "user_id", model.ErrNotFound)
		}
		logger.Error("Failed to update user role", "error", err, "user_id", userID)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "役割の変更に失敗しました。", "", err)
	}

	// 既存トークンの役割クレームは失効まで古いまま。即時に反映したい場合は
	// 再ログインが必要になる。
	logger.Info("User role updated", "user_id", userID, "role", req.Role)
	return nil
}

func (s *authService) sendWelcomeEmail(ctx context.Context, tenant *model.Tenant, user *model.User) error {
	subject := fmt.Sprintf("【%s】ようこそ %s へ", config.AppName, tenant.Name)
	body := fmt.Sprintf("%s さん\n\n%s へのご登録ありがとうございます。\nhttps://%s.%s からログインして学習を始めましょう。",
		user.Name, tenant.Name, tenant.Slug, s.cfg.Server.BaseDomain)
	return s.mailer.Send(ctx, user.Email, subject, body)
}
