package service

import (
	"context"
	"log/slog"

	"go_5_course_keep/internal/config"
	"go_5_course_keep/internal/middleware"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// --- LogMailer ---
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Email (LogMailer) ---", "to", to, "subject", subject, "body", body)
	return nil
}

// --- NewMailer ファクトリ関数 ---
func NewMailer(cfg *config.Config) Mailer {
	logger := slog.Default()
	if cfg.Mail.Enabled {
		logger.Info("Initializing SES mailer...")
		return NewSESMailer(cfg)
	}
	logger.Info("Mail disabled, initializing Log mailer...")
	return &LogMailer{}
}
