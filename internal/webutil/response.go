package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go_5_course_keep/internal/model"

	"github.com/go-playground/validator/v10"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
// これがアプリケーションのエラーハンドリングの中心となります。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	// エラーの根本原因に基づいてHTTPステータスコードを決定
	statusCode := MapErrorToStatusCode(err)

	var errResp model.APIErrorResponse
	var appErr *model.AppError
	var permErr *model.PermissionDeniedError

	switch {
	case errors.As(err, &appErr):
		// AppError の場合、その詳細情報をレスポンスとして使用
		errResp = model.APIErrorResponse{Error: appErr.Detail}
	case errors.As(err, &permErr):
		// 認可拒否。どの資源・操作で拒否されたかを返す
		errResp = model.APIErrorResponse{
			Error: model.ErrorDetail{
				Code:    "PERMISSION_DENIED",
				Message: fmt.Sprintf("この操作を行う権限がありません (%s:%s)。", permErr.Resource, permErr.Action),
			},
		}
	default:
		// 予期せぬエラーの場合、ログには詳細なエラーを出力し、
		// クライアントには汎用的なエラーメッセージを返す
		if statusCode >= 500 {
			logger.Error("Unhandled error", "error", err)
		}
		errResp = model.APIErrorResponse{
			Error: model.ErrorDetail{
				Code:    defaultCodeForStatus(statusCode),
				Message: defaultMessageForStatus(statusCode),
			},
		}
	}

	RespondWithJSON(w, statusCode, errResp, logger)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	var appErr *model.AppError
	// AppErrorの場合は、ラップされたエラーで判定する
	if errors.As(err, &appErr) {
		err = appErr.Unwrap()
	}
	var permErr *model.PermissionDeniedError
	if errors.As(err, &permErr) {
		err = permErr.Unwrap()
	}

	switch {
	case errors.Is(err, model.ErrTenantNotFound):
		// 存在しないテナントは 403 ではなく 404 (テナントの存在を漏らさない)
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrExternalService):
		return http.StatusBadGateway
	default:
		// ハンドリングされていないエラーは内部サーバーエラーとして扱う
		return http.StatusInternalServerError
	}
}

func defaultCodeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	case http.StatusUnprocessableEntity:
		return "INVALID_CONFIGURATION"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusBadGateway:
		return "EXTERNAL_SERVICE_ERROR"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

func defaultMessageForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return "リソースが見つかりません。"
	case http.StatusUnauthorized:
		return "認証が必要です。"
	case http.StatusForbidden:
		return "この操作を行う権限がありません。"
	case http.StatusBadRequest:
		return "リクエストの内容が正しくありません。"
	case http.StatusUnprocessableEntity:
		return "コンテンツの構成が公開条件を満たしていません。"
	case http.StatusConflict:
		return "他の操作と競合しました。もう一度お試しください。"
	case http.StatusBadGateway:
		return "外部サービスとの通信に失敗しました。時間をおいて再度お試しください。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR", "message":"レスポンス生成中にエラーが発生しました。"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string

	for _, err := range errs {
		fields = append(fields, err.Field())
		messages = append(messages, err.Translate(Trans))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, "; "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}
