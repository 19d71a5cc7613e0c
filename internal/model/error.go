// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// アプリケーション固有のエラー
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternalServer       = errors.New("internal server error")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrTenantNotFound       = errors.New("tenant not found or invalid")
	ErrConflict             = errors.New("resource conflict") // 重複・競合エラー用
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrExternalService      = errors.New("external service failure") // リトライ可能
)

// ErrorDetail はクライアントに返すエラーの詳細
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はエラーコードとユーザー向けメッセージを持つアプリケーションエラー。
// 根本原因のセンチネルエラーをラップし、HTTPステータスへの変換は webutil が行う。
type AppError struct {
	Detail ErrorDetail
	err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		err:    err,
	}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Detail.Code, e.Detail.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

func (e *AppError) Unwrap() error {
	return e.err
}

// PermissionDeniedError は認可拒否を表します。
// 呼び出し元がユーザー向けメッセージを組み立てられるよう、
// 拒否されたリソースとアクションを保持します。
type PermissionDeniedError struct {
	Resource Resource
	Action   Action
}

func NewPermissionDenied(resource Resource, action Action) *PermissionDeniedError {
	return &PermissionDeniedError{Resource: resource, Action: action}
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: action=%s resource=%s", e.Action, e.Resource)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrForbidden
}
