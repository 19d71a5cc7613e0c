package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logCtxKey はコンテキストにロガーを格納するためのキーです。
type logCtxKey struct{}

// slugCtxKey は解決済みテナントの slug を終了ログへ受け渡すためのキーです。
type slugCtxKey struct{}

// slugHolder はテナント解決の結果を受け取る書き戻し口です。
// テナント解決はこのミドルウェアより後段 (TenantMiddleware) で行われるため、
// 終了ログに tenant_slug を載せるにはポインタ越しに書き戻してもらう必要がある。
type slugHolder struct {
	slug string
}

// maxLoggedBodyBytes はデバッグログに載せるボディの上限。
// コード提出のソースや動画URL一覧はこれを超えることがある。
const maxLoggedBodyBytes = 4 << 10

// sensitiveHeaders はログ出力時に値をマスキングするヘッダー名のリストです (小文字で定義)。
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true, // リクエストヘッダー
	"set-cookie":    true, // レスポンスヘッダー
	"x-api-key":     true,
	"x-csrf-token":  true,
}

// responseLogger は http.ResponseWriter をラップし、ステータスコードとレスポンスボディを記録します。
type responseLogger struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

// newResponseLogger は新しい responseLogger を作成します。
func newResponseLogger(w http.ResponseWriter) *responseLogger {
	return &responseLogger{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		body:           new(bytes.Buffer),
	}
}

func (rl *responseLogger) WriteHeader(statusCode int) {
	rl.statusCode = statusCode
	rl.ResponseWriter.WriteHeader(statusCode)
}

func (rl *responseLogger) Write(b []byte) (int, error) {
	rl.body.Write(b) // レスポンスボディをキャプチャ
	return rl.ResponseWriter.Write(b)
}

// LoggingMiddleware はリクエスト/レスポンスのログ出力を一元管理するミドルウェアです。
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// --- ステップ1: リクエスト到着時の準備 ---

			startTime := time.Now()

			// リクエストID付きのロガーを生成し、コンテキストに格納
			requestLogger := logger.With("req_id", middleware.GetReqID(r.Context()))
			ctx := context.WithValue(r.Context(), logCtxKey{}, requestLogger)

			// テナント解決の結果を終了ログで拾うための受け口
			holder := &slugHolder{}
			ctx = context.WithValue(ctx, slugCtxKey{}, holder)
			r = r.WithContext(ctx)

			// ★★★ 開始ログの出力 ★★★
			// host はテナント解決の入力なので必ず記録する
			requestLogger.Info("Request started",
				"method", r.Method,
				"path", r.URL.Path,
				"host", r.Host,
				"remote_addr", r.RemoteAddr,
			)

			// リクエストボディを安全に読み取る (デバッグ用)
			var reqBodyBytes []byte
			if logger.Enabled(r.Context(), slog.LevelDebug) && r.Body != nil {
				reqBodyBytes, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
			}

			// レスポンスを記録するためのラッパーを準備
			rl := newResponseLogger(w)

			// --- ステップ2: 次のハンドラに処理を移譲 ---
			next.ServeHTTP(rl, r)

			// --- ステップ3: レスポンス返却直前のログ出力 ---

			latency := time.Since(startTime)
			statusCode := rl.statusCode

			// ログレベルを決定。死活監視の成功はノイズなので Debug に落とす
			logLevel := slog.LevelInfo
			if statusCode >= 500 {
				logLevel = slog.LevelError
			} else if statusCode >= 400 {
				logLevel = slog.LevelWarn
			} else if r.URL.Path == "/health" {
				logLevel = slog.LevelDebug
			}

			// ★★★ 終了ログ（概要ログ）の出力 ★★★
			// tenant_slug は TenantMiddleware が解決に成功した場合のみ載る
			summary := []any{
				"status", statusCode,
				"latency_ms", float64(latency.Nanoseconds()) / 1e6,
				"bytes_out", rl.body.Len(),
			}
			if holder.slug != "" {
				summary = append(summary, "tenant_slug", holder.slug)
			}
			requestLogger.Log(r.Context(), logLevel, "Request completed", summary...)

			// ★★★ 詳細ログの出力 (デバッグレベル) ★★★
			if logger.Enabled(r.Context(), slog.LevelDebug) {
				requestLogger.Debug("Request detail",
					"headers", formatHeaders(r.Header),
					"body", truncateForLog(reqBodyBytes),
				)
				requestLogger.Debug("Response detail",
					"status", statusCode,
					"headers", formatHeaders(rl.Header()),
					"body", truncateForLog(rl.body.Bytes()),
				)
			}
		})
	}
}

// GetLogger はコンテキストから slog.Logger を取得します。
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(logCtxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// truncateForLog は提出コードなどの大きなボディをログ用に切り詰めるヘルパー関数
func truncateForLog(b []byte) string {
	if len(b) <= maxLoggedBodyBytes {
		return string(b)
	}
	return string(b[:maxLoggedBodyBytes]) + "...(truncated)"
}

// formatHeaders はヘッダー情報をログ出力用に整形・マスキングするヘルパー関数
func formatHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		lowerKey := strings.ToLower(key)
		if sensitiveHeaders[lowerKey] {
			result[key] = "[SENSITIVE]"
		} else {
			result[key] = strings.Join(values, ", ")
		}
	}
	return result
}
