package http

import (
	"fmt"
	"net/http"
)

// Error codes shared by the API. Validation failures use ERR_<TAG> derived from the
// validator tag instead.
const (
	CodeEmptyText   = "ERR_EMPTY_TEXT"
	CodeDatetime    = "ERR_DATETIME"
	CodeRateLimited = "ERR_RATE_LIMITED"
	CodeUnavailable = "ERR_UNAVAILABLE"
	CodeUpstream    = "ERR_UPSTREAM"
	CodeInternal    = "ERR_INTERNAL"
	CodeHTTP        = "ERR_HTTP"
	CodeBadBody     = "ERR_BAD_BODY"
)

// AppError is one entry of the error list carried in the envelope data.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{}, 1)
	}
	e.Params[key] = value
	return e
}

// WithError attaches the cause for logs; it never reaches the client.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func EmptyTextError(message string) *AppError {
	return NewAppError(CodeEmptyText, "text", message, http.StatusBadRequest)
}

func DatetimeError(field, message string) *AppError {
	return NewAppError(CodeDatetime, field, message, http.StatusBadRequest)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(CodeRateLimited, "", message, http.StatusTooManyRequests)
}

func ServiceUnavailableError(message string) *AppError {
	return NewAppError(CodeUnavailable, "", message, http.StatusServiceUnavailable)
}

func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
