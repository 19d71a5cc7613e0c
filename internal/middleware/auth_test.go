package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = testSecret
	return cfg
}

func signToken(t *testing.T, userID uuid.UUID, role model.Role, tenantID uuid.UUID, slug string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":                 config.AppName,
		"sub":                 userID.String(),
		"iat":                 jwt.NewNumericDate(now),
		"exp":                 jwt.NewNumericDate(now.Add(expiresIn)),
		model.ClaimRole:       string(role),
		model.ClaimTenantID:   tenantID.String(),
		model.ClaimTenantSlug: slug,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// serveWithTenant は解決済みテナントをコンテキストに積んだ状態で
// JWTAuthMiddleware を通し、後段ハンドラに届いた Actor を捕捉します。
func serveWithTenant(t *testing.T, tenant *model.Tenant, authHeader string) (*httptest.ResponseRecorder, *model.Actor) {
	t.Helper()

	var captured *model.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := GetActorFromContext(r.Context())
		require.NoError(t, err)
		captured = &actor
		w.WriteHeader(http.StatusOK)
	})

	handler := JWTAuthMiddleware(testConfig())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	ctx := context.WithValue(req.Context(), model.TenantKey, tenant)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req.WithContext(ctx))
	return rr, captured
}

func TestJWTAuthMiddleware(t *testing.T) {
	tenant := &model.Tenant{TenantID: uuid.New(), Name: "テスト校", Slug: "acme"}
	userID := uuid.New()

	t.Run("正常系: 有効なトークンで Actor がコンテキストに入る", func(t *testing.T) {
		token := signToken(t, userID, model.RoleInstructor, tenant.TenantID, tenant.Slug, time.Hour)

		rr, actor := serveWithTenant(t, tenant, "Bearer "+token)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, actor)
		assert.Equal(t, userID, actor.UserID)
		assert.Equal(t, tenant.TenantID, actor.TenantID)
		assert.Equal(t, model.RoleInstructor, actor.Role)
	})

	t.Run("異常系: Authorization ヘッダーがない場合は401", func(t *testing.T) {
		rr, _ := serveWithTenant(t, tenant, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("異常系: Bearer 形式でない場合は401", func(t *testing.T) {
		rr, _ := serveWithTenant(t, tenant, "Basic abcdef")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("異常系: 署名鍵が違うトークンは401", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": userID.String(),
			"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		rr, _ := serveWithTenant(t, tenant, "Bearer "+forged)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("異常系: 期限切れのトークンは401", func(t *testing.T) {
		token := signToken(t, userID, model.RoleLearner, tenant.TenantID, tenant.Slug, -time.Hour)

		rr, _ := serveWithTenant(t, tenant, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("異常系: 別テナント宛のトークンは401", func(t *testing.T) {
		token := signToken(t, userID, model.RoleLearner, uuid.New(), tenant.Slug, time.Hour)

		rr, _ := serveWithTenant(t, tenant, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("異常系: slug 変更前に発行されたトークンは401", func(t *testing.T) {
		// 発行時点の slug は acme。その後テナントが renamed-acme に改名した想定。
		token := signToken(t, userID, model.RoleLearner, tenant.TenantID, tenant.Slug, time.Hour)
		renamed := &model.Tenant{TenantID: tenant.TenantID, Name: tenant.Name, Slug: "renamed-acme"}

		rr, _ := serveWithTenant(t, renamed, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("異常系: 未知のロールクレームは401", func(t *testing.T) {
		token := signToken(t, userID, model.Role("superuser"), tenant.TenantID, tenant.Slug, time.Hour)

		rr, _ := serveWithTenant(t, tenant, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
