package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnsafeTarget = "UNSAFE_TARGET"
	ErrCodeFetchTimeout = "FETCH_TIMEOUT"
	ErrCodeFetchFailed  = "FETCH_FAILED"
	ErrCodeScrapeFailed = "SCRAPE_FAILED"
	ErrCodeUpstream     = "UPSTREAM_FAILED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnalyzeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type AnalyzeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *AnalyzeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AnalyzeError) Unwrap() error {
	return e.Err
}

// NewAnalyzeError creates a new AnalyzeError.
func NewAnalyzeError(code, message string, err error) *AnalyzeError {
	return &AnalyzeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *AnalyzeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
