package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証し、
// 操作主体 (Actor) をコンテキストに格納するミドルウェアです。
// TenantMiddleware の後段に置くこと。トークンの tenant_id / slug クレームが
// 解決済みテナントと一致しない場合は 401 を返す (slug 変更による即時失効)。
func JWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			tenant, err := GetTenantFromContext(r.Context())
			if err != nil {
				webutil.HandleError(w, logger, err)
				return
			}

			// 1. Authorization ヘッダーからトークンを取得
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("JWT auth failed: Authorization header missing")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// "Bearer {token}" の形式を検証
			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("JWT auth failed: Invalid Authorization header format")
				appErr := model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}
			tokenString := headerParts[1]

			// 2. JWTをパースし、署名と有効期限を検証
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				// 署名アルゴリズムが期待通り(HS256)かチェック
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			})

			if err != nil {
				logger.Warn("JWT auth failed: Invalid token", "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				logger.Warn("JWT auth failed: Unknown claims type or invalid token")
				appErr := model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// 3. ペイロードから subject (ユーザーID) を取得
			subject, err := claims.GetSubject()
			if err != nil {
				logger.Warn("JWT auth failed: Subject (sub) claim missing", "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンにユーザー情報が含まれていません。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				logger.Warn("JWT auth failed: Invalid subject (sub) format", "subject", subject, "error", err)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンのユーザー情報が不正です。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}

			// 4. テナントクレームの照合。発行時と tenant_id が違えば別テナントの
			//    トークン、slug が違えばリネーム前に発行された古いトークン。
			tokenTenantID, _ := claims[model.ClaimTenantID].(string)
			if tokenTenantID != tenant.TenantID.String() {
				logger.Warn("JWT auth failed: Token tenant mismatch", "token_tenant_id", tokenTenantID)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンはこのテナントでは使用できません。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}
			tokenSlug, _ := claims[model.ClaimTenantSlug].(string)
			if tokenSlug != tenant.Slug {
				logger.Warn("JWT auth failed: Token issued before slug rename", "token_slug", tokenSlug)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンが失効しています。再度ログインしてください。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}

			roleStr, _ := claims[model.ClaimRole].(string)
			role := model.Role(roleStr)
			if !role.Valid() {
				logger.Warn("JWT auth failed: Invalid role claim", "role", roleStr)
				appErr := model.NewAppError("INVALID_TOKEN", "トークンのロール情報が不正です。", "", model.ErrUnauthenticated)
				webutil.HandleError(w, logger, appErr)
				return
			}

			actor := model.Actor{
				UserID:   userID,
				TenantID: tenant.TenantID,
				Role:     role,
			}
			ctx := context.WithValue(r.Context(), model.ActorKey, actor)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActorFromContext はコンテキストから認証済みの操作主体を取得します。
func GetActorFromContext(ctx context.Context) (model.Actor, error) {
	actor, ok := ctx.Value(model.ActorKey).(model.Actor)
	if !ok {
		return model.Actor{}, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからユーザー情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return actor, nil
}
