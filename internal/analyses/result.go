package analyses

import (
	"net/http"

	"jobtrack-backend/internal/quota"
)

// Result is the outcome of one analysis request. Orchestration never panics
// or leaks internal errors upward: every terminal state, success or failure,
// is expressed as a Result so callers can branch without unwrapping.
type Result struct {
	OK bool `json:"ok"`

	// Record is set only on success.
	Record *Record `json:"record,omitempty"`

	// RateLimit is the quota snapshot observed during the request, when one
	// was taken before the terminal state.
	RateLimit *quota.Status `json:"rateLimit,omitempty"`

	// Code and Message describe the failure. Empty on success.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	httpStatus int
}

// HTTPStatus maps the result onto an HTTP response code.
func (r Result) HTTPStatus() int {
	if r.OK {
		return http.StatusOK
	}
	if r.httpStatus != 0 {
		return r.httpStatus
	}
	return http.StatusInternalServerError
}

// Failure codes returned in Result.Code.
const (
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limit_exceeded"
	CodeNotFound     = "not_found"
	CodeInvalidInput = "validation_error"
	CodeContentEmpty = "content_unavailable"
	CodeAIFailure    = "ai_error"
	CodePersistence  = "internal_error"
)

func successResult(record Record, status *quota.Status) Result {
	return Result{OK: true, Record: &record, RateLimit: status, httpStatus: http.StatusOK}
}

func failureResult(httpStatus int, code, message string) Result {
	return Result{OK: false, Code: code, Message: message, httpStatus: httpStatus}
}
