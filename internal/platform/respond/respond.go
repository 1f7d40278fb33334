// Package respond writes JSON responses and maps errors to the API's error
// body.
package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/platform/errs"
)

const unexpectedMessage = "An unexpected error occurred."

// JSON encodes data and writes it with the given status. Encoding happens
// before the header is written so a failure can still become a 500.
func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Status writes the error body for status with a caller-chosen message.
func Status(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	JSON(w, logger, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}

// Error writes err as an error body. An *errs.AppError picks the status from
// its Kind and exposes its Message; anything else is a generic 500.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		Status(w, logger, appErr.Kind.HTTPStatus(), appErr.Message)
		return
	}

	Status(w, logger, http.StatusInternalServerError, unexpectedMessage)
}
