package pkg

import (
	"fmt"
	"net/http"
)

// AppError is the error shape returned by HTTP handlers.
type AppError struct {
	Code       string
	Message    string
	Err        error
	HTTPStatus int
	Retryable  bool
}

// HTTPError is the JSON body written for an AppError.
type HTTPError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func NewDomainError(code, message string, err error, status int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: status}
}

func NewDomainErrorSimple(code, message string, status int) *AppError {
	return NewDomainError(code, message, nil, status)
}

// NewRetryableError marks the error as transient; clients may retry the call.
func NewRetryableError(code, message string, err error, status int) *AppError {
	appErr := NewDomainError(code, message, err, status)
	appErr.Retryable = true
	return appErr
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ToHTTPError never exposes the wrapped error.
func (e *AppError) ToHTTPError() HTTPError {
	return HTTPError{Code: e.Code, Message: e.Message, Retryable: e.Retryable}
}

func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
