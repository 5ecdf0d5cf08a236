package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/github"
)

// ErrorCode is the machine readable part of an error response.
type ErrorCode string

// All error codes returned by the API.
const (
	ErrCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnprocessable      ErrorCode = "UNPROCESSABLE"
	ErrCodeUpstreamError      ErrorCode = "UPSTREAM_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// AppError is an error with the HTTP status and code it is reported with.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Err        error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidRequest reports a malformed request.
func InvalidRequest(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}

// Unauthorized reports a request that lacks the credentials it needs.
func Unauthorized(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: fmt.Sprintf(format, args...), StatusCode: http.StatusUnauthorized}
}

// fromError classifies err. Status codes of the source API are passed
// through for auth, missing and validation failures; other upstream
// failures become 502.
func fromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, core.ErrSummaryDisabled) {
		return &AppError{Code: ErrCodeServiceUnavailable, Message: err.Error(), StatusCode: http.StatusServiceUnavailable, Err: err}
	}

	status := github.StatusCode(err)
	e := &AppError{Message: err.Error(), StatusCode: status, Err: err}
	switch status {
	case http.StatusUnauthorized:
		e.Code = ErrCodeUnauthorized
	case http.StatusForbidden:
		e.Code = ErrCodeForbidden
	case http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		e.Code = ErrCodeUnprocessable
	case 0:
		e.Code, e.StatusCode = ErrCodeInternalError, http.StatusInternalServerError
	default:
		e.Code, e.StatusCode = ErrCodeUpstreamError, http.StatusBadGateway
	}
	return e
}
