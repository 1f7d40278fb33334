// Package minicheck runs the mini site audit: it validates a user-supplied
// URL against server-side request forgery, fetches the page within fixed
// limits, extracts its signals and scores them.
package minicheck

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lucera/minicheck/internal/interpret"
	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/platform/errs"
	"github.com/lucera/minicheck/internal/scoring"
	"github.com/lucera/minicheck/internal/signals"
)

// pageFetcher retrieves a guarded URL.
type pageFetcher interface {
	Fetch(ctx context.Context, target *url.URL) (*Page, error)
}

// Interpreter produces an optional natural-language reading of a report.
type Interpreter interface {
	Interpret(ctx context.Context, in interpret.Input) (*model.Interpretation, error)
}

// Recorder receives mini-check outcomes for monitoring.
type Recorder interface {
	RecordCheck(outcome string, d time.Duration)
	RecordScores(hygiene, ai int, capped bool)
	RecordRedirects(n int)
	RecordInterpretation(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordCheck(string, time.Duration) {}
func (noopRecorder) RecordScores(int, int, bool) {}
func (noopRecorder) RecordRedirects(int) {}
func (noopRecorder) RecordInterpretation(string) {}

// Engine orchestrates guard, fetch, extraction, scoring and interpretation.
type Engine struct {
	guard       urlGuard
	fetcher     pageFetcher
	interpreter Interpreter
	metrics     Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithInterpreter enables the interpretation step.
func WithInterpreter(i Interpreter) Option {
	return func(e *Engine) {
		e.interpreter = i
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine returns an Engine backed by the given guard and fetcher.
func NewEngine(guard urlGuard, fetcher pageFetcher, opts ...Option) *Engine {
	e := &Engine{
		guard:   guard,
		fetcher: fetcher,
		metrics: noopRecorder{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check runs a complete mini-check on rawURL.
func (e *Engine) Check(ctx context.Context, rawURL string) (*model.Report, error) {
	start := time.Now()

	report, err := e.check(ctx, strings.TrimSpace(rawURL))
	e.metrics.RecordCheck(outcome(err), time.Since(start))

	return report, err
}

func (e *Engine) check(ctx context.Context, rawURL string) (*model.Report, error) {
	if rawURL == "" {
		return nil, errs.New(errs.InvalidInput, "url is required", ErrInvalidURL)
	}

	target, err := e.guard.Check(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	page, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordRedirects(page.Redirects)

	sig := signals.Extract(page.HTML)
	hygiene, checks := scoring.Hygiene(sig)
	ai := scoring.Recommendability(sig)
	e.metrics.RecordScores(hygiene, ai.Score, ai.Cap != nil)

	report := &model.Report{
		InputURL:     rawURL,
		FinalURL:     page.FinalURL,
		HygieneScore: hygiene,
		Checks:       checks,
		AIScore:      ai.Score,
		Pillars:      ai.Pillars,
		Cap:          ai.Cap,
		CapReasons:   ai.CapReasons,
		SchemaTypes:  sig.SchemaTypes,
		ElapsedMs:    page.Elapsed.Milliseconds(),
		Timestamp:    e.now().UTC().Format(time.RFC3339),
	}

	report.Interpretation = e.interpret(ctx, interpret.Input{
		URL:      rawURL,
		FinalURL: page.FinalURL,
		Score:    ai.Score,
		Checks:   checks,
	})

	return report, nil
}

// interpret is best-effort: any failure yields a nil interpretation.
func (e *Engine) interpret(ctx context.Context, in interpret.Input) *model.Interpretation {
	if e.interpreter == nil {
		return nil
	}

	res, err := e.interpreter.Interpret(ctx, in)
	switch {
	case errors.Is(err, interpret.ErrDisabled):
		e.metrics.RecordInterpretation("disabled")
		return nil
	case err != nil:
		e.metrics.RecordInterpretation("failed")
		e.logger.Warn("interpretation unavailable", "url", in.FinalURL, "error", err)
		return nil
	}

	e.metrics.RecordInterpretation("ok")
	return res
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		return appErr.Kind.String()
	}
	return errs.Unknown.String()
}
