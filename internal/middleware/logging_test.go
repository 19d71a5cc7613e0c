package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_5_course_keep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubTenantResolver struct {
	tenant *model.Tenant
}

func (s *stubTenantResolver) ResolveHost(ctx context.Context, host string) (*model.Tenant, error) {
	return s.tenant, nil
}

func TestLoggingMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("正常系: テナント解決後の終了ログに tenant_slug が乗る", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger := slog.New(slog.NewJSONHandler(buf, nil))
		tenant := &model.Tenant{TenantID: uuid.New(), Name: "テスト校", Slug: "acme"}

		handler := LoggingMiddleware(logger)(TenantMiddleware(&stubTenantResolver{tenant: tenant})(okHandler))

		req := httptest.NewRequest(http.MethodGet, "/courses", nil)
		req.Host = "acme.coursekeep.local"
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, buf.String(), `"msg":"Request completed"`)
		assert.Contains(t, buf.String(), `"tenant_slug":"acme"`)
	})

	t.Run("正常系: 死活監視の成功は概要ログを出さない", func(t *testing.T) {
		buf := new(bytes.Buffer)
		logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		handler := LoggingMiddleware(logger)(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotContains(t, buf.String(), "Request completed")
	})
}

func TestTruncateForLog(t *testing.T) {
	t.Run("正常系: 上限以下のボディはそのまま", func(t *testing.T) {
		body := strings.Repeat("a", 32)
		assert.Equal(t, body, truncateForLog([]byte(body)))
	})

	t.Run("正常系: 上限を超えるボディは切り詰められる", func(t *testing.T) {
		body := strings.Repeat("b", maxLoggedBodyBytes+100)

		got := truncateForLog([]byte(body))

		assert.True(t, strings.HasSuffix(got, "...(truncated)"))
		assert.Len(t, got, maxLoggedBodyBytes+len("...(truncated)"))
	})
}
