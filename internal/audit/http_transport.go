package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/platform/respond"
)

const defaultRequestTimeout = 60 * time.Second

var errURLRequired = errors.New("url is required")

// Transport handles HTTP requests for mini-checks.
type Transport struct {
	service        *Service
	logger         *slog.Logger
	requestTimeout time.Duration
	llmEnabled     bool
	checkMW        []func(http.Handler) http.Handler
}

// TransportOption configures the Transport.
type TransportOption func(*Transport)

// WithRequestTimeout bounds the whole mini-check request.
func WithRequestTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		if d > 0 {
			t.requestTimeout = d
		}
	}
}

// WithInterpretation reports on the status endpoint whether interpretation
// is configured.
func WithInterpretation(enabled bool) TransportOption {
	return func(t *Transport) {
		t.llmEnabled = enabled
	}
}

// WithCheckMiddleware wraps the POST handler only, e.g. with a rate limiter.
func WithCheckMiddleware(mw ...func(http.Handler) http.Handler) TransportOption {
	return func(t *Transport) {
		t.checkMW = append(t.checkMW, mw...)
	}
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, logger *slog.Logger, opts ...TransportOption) *Transport {
	t := &Transport{service: service, logger: logger, requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	var check http.Handler = http.HandlerFunc(t.handleCheck)
	for i := len(t.checkMW) - 1; i >= 0; i-- {
		check = t.checkMW[i](check)
	}

	mux.Handle("POST /mini-check", check)
	mux.HandleFunc("GET /mini-check", t.handleStatus)
}

type checkRequest struct {
	URL any `json:"url"`
}

func (r checkRequest) validate() (string, error) {
	s, ok := r.URL.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", errURLRequired
	}
	return s, nil
}

func (t *Transport) handleCheck(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 64 << 10
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, "Invalid request body. Please send a JSON object with a \"url\" field.")
		return
	}

	rawURL, err := req.validate()
	if err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), t.requestTimeout)
	defer cancel()

	report, err := t.service.Check(ctx, rawURL)
	if err != nil {
		respond.Error(w, t.logger, err)
		return
	}

	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleStatus(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, model.StatusResponse{
		Status:  "ok",
		Message: "Mini Check API is running",
		LLM:     t.llmEnabled,
	})
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	respond.JSON(w, t.logger, status, data)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	respond.Status(w, t.logger, status, message)
}
