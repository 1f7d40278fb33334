package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/platform/errs"
	"github.com/lucera/minicheck/internal/platform/reqctx"
)

// Service orchestrates a Checker and logs results.
type Service struct {
	checker Checker
	logger  *slog.Logger
}

// NewService creates a Service backed by the given checker.
func NewService(checker Checker, logger *slog.Logger) *Service {
	return &Service{checker: checker, logger: logger}
}

// Check delegates to the checker and logs the outcome.
func (s *Service) Check(ctx context.Context, rawURL string) (*model.Report, error) {
	logger := s.logger.With(
		"url", rawURL,
		"client", reqctx.Client(ctx),
		"request_id", reqctx.RequestID(ctx),
	)

	report, err := s.checker.Check(ctx, rawURL)
	if err != nil {
		var appErr *errs.AppError
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !(errors.As(err, &appErr) && appErr.Kind == errs.Timeout) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "The mini-check timed out. The page may be slow to respond.",
				Cause:   err,
			}
		}

		attrs := []any{"error", err}
		level := slog.LevelError
		if errors.As(err, &appErr) {
			attrs = append(attrs, "kind", appErr.Kind.String())
			if appErr.UpstreamStatus != 0 {
				attrs = append(attrs, "target_status", appErr.UpstreamStatus)
			}
			if appErr.Kind != errs.Unknown {
				level = slog.LevelWarn
			}
		}
		logger.Log(ctx, level, "mini-check failed", attrs...)
		return nil, err
	}

	attrs := []any{
		"final_url", report.FinalURL,
		"hygiene_score", report.HygieneScore,
		"ai_score", report.AIScore,
		"elapsed_ms", report.ElapsedMs,
	}
	if report.Cap != nil {
		attrs = append(attrs, "cap", *report.Cap)
	}
	logger.Info("mini-check complete", attrs...)
	return report, nil
}
