package errs

import (
	"fmt"
	"net/http"
)

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error (HTTP 500).
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Blocked indicates the target address is not allowed to be fetched (HTTP 400).
	Blocked
	// Unreachable indicates the target could not be fetched or did not
	// return an acceptable page (HTTP 502).
	Unreachable
	// Timeout indicates the target took too long to respond (HTTP 504).
	Timeout
	// RateLimited indicates the caller exceeded its request budget (HTTP 429).
	RateLimited
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Blocked:
		return "blocked"
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case RateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// HTTPStatus returns the status code a transport should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput, Blocked:
		return http.StatusBadRequest
	case Unreachable:
		return http.StatusBadGateway
	case Timeout:
		return http.StatusGatewayTimeout
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries a category and a user-facing message around the
// underlying cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target domain
	Message        string
	Cause          error
}

// New returns an AppError of the given kind wrapping cause.
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
