package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/middleware"
	"go_5_course_keep/internal/model"
)

//go:generate mockery --name JudgeClient --output ./mocks --outpkg mocks --case=underscore

// JudgeClient は外部のコード実行サービスへの同期呼び出しです。
// 失敗はリトライ可能なエラーとして呼び出し元に返る (進捗には影響しない)。
type JudgeClient interface {
	Execute(ctx context.Context, req *model.JudgeRequest) (*model.JudgeResult, error)
}

type httpJudgeClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPJudgeClient は設定に基づいてジャッジクライアントを生成します
func NewHTTPJudgeClient(cfg *config.Config) JudgeClient {
	return &httpJudgeClient{
		baseURL: cfg.Judge.URL,
		client: &http.Client{
			Timeout: time.Duration(cfg.Judge.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *httpJudgeClient) Execute(ctx context.Context, req *model.JudgeRequest) (*model.JudgeResult, error) {
	logger := middleware.GetLogger(ctx)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("httpJudgeClient.Execute (marshal): %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submissions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("httpJudgeClient.Execute (new request): %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		logger.Error("Judge request failed", "error", err, "url", c.baseURL)
		return nil, fmt.Errorf("judge unreachable: %w", model.ErrExternalService)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Judge returned non-2xx status", "status", resp.StatusCode)
		return nil, fmt.Errorf("judge returned status %d: %w", resp.StatusCode, model.ErrExternalService)
	}

	var result model.JudgeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("Failed to decode judge response", "error", err)
		return nil, fmt.Errorf("judge response malformed: %w", model.ErrExternalService)
	}

	return &result, nil
}
