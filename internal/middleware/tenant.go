package middleware

import (
	"context"
	"net/http"

	"go_5_course_keep/internal/model"
	"go_5_course_keep/internal/webutil"
)

// TenantResolver は Host ヘッダーからテナントを解決します。
// service.TenantService がこれを満たす (循環参照を避けるためここで定義)。
type TenantResolver interface {
	ResolveHost(ctx context.Context, host string) (*model.Tenant, error)
}

// TenantMiddleware は全リクエストの入口でサブドメインからテナントを解決し、
// コンテキストに格納するミドルウェアです。解決できない場合は 404 を返し、
// 後続の処理には一切進みません。
func TenantMiddleware(resolver TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			tenant, err := resolver.ResolveHost(r.Context(), r.Host)
			if err != nil {
				logger.Warn("Tenant resolution failed", "host", r.Host, "error", err)
				webutil.HandleError(w, logger, err)
				return
			}

			// テナント付きロガーに差し替える (以降のログに必ず tenant_slug が乗る)
			tenantLogger := logger.With("tenant_slug", tenant.Slug)
			ctx := context.WithValue(r.Context(), logCtxKey{}, tenantLogger)
			ctx = context.WithValue(ctx, model.TenantKey, tenant)

			// 終了ログ (LoggingMiddleware 側) にもテナントを載せる
			if holder, ok := r.Context().Value(slugCtxKey{}).(*slugHolder); ok {
				holder.slug = tenant.Slug
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantFromContext はコンテキストから解決済みテナントを取得します。
func GetTenantFromContext(ctx context.Context) (*model.Tenant, error) {
	tenant, ok := ctx.Value(model.TenantKey).(*model.Tenant)
	if !ok || tenant == nil {
		// ミドルウェアを通っていない経路からの呼び出し (内部エラー)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからテナント情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return tenant, nil
}
