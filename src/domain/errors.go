package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode int

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodeParameterInvalid
	ErrorCodeInvalidState
	ErrorCodeResourceNotFound
	ErrorCodeConflict
	ErrorCodeInternalProcess
)

// DomainError carries an error kind across the service boundary so the
// handler layer can pick the HTTP status without inspecting messages.
// The zero value is a safe unknown error that maps to 500.
type DomainError struct {
	code   ErrorCode
	cause  error
	msg    string
	detail map[string]interface{}
}

type ErrorOption func(*DomainError)

// WithMsg sets the message returned to the client.
func WithMsg(format string, args ...interface{}) ErrorOption {
	return func(e *DomainError) {
		e.msg = fmt.Sprintf(format, args...)
	}
}

// WithDetail attaches structured context for the client error body.
func WithDetail(detail map[string]interface{}) ErrorOption {
	return func(e *DomainError) {
		e.detail = detail
	}
}

func NewError(code ErrorCode, cause error, opts ...ErrorOption) DomainError {
	e := DomainError{code: code, cause: cause}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Name(), e.cause.Error())
	}
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.Name(), e.msg)
	}
	return e.Name()
}

func (e DomainError) Unwrap() error {
	return e.cause
}

func (e DomainError) Code() ErrorCode {
	return e.code
}

func (e DomainError) Name() string {
	switch e.code {
	case ErrorCodeParameterInvalid:
		return "PARAMETER_INVALID"
	case ErrorCodeInvalidState:
		return "INVALID_STATE"
	case ErrorCodeResourceNotFound:
		return "RESOURCE_NOT_FOUND"
	case ErrorCodeConflict:
		return "CONFLICT"
	case ErrorCodeInternalProcess:
		return "INTERNAL_PROCESS"
	default:
		return "UNKNOWN"
	}
}

// ClientMsg is the human message for the error response body.
func (e DomainError) ClientMsg() string {
	return e.msg
}

func (e DomainError) Detail() map[string]interface{} {
	return e.detail
}

func (e DomainError) HTTPStatus() int {
	switch e.code {
	case ErrorCodeParameterInvalid, ErrorCodeInvalidState, ErrorCodeConflict:
		return http.StatusBadRequest
	case ErrorCodeResourceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AsDomainError extracts the DomainError from err. A non-domain error yields
// the zero value, which reports UNKNOWN and maps to 500.
func AsDomainError(err error) DomainError {
	var domainError DomainError
	_ = errors.As(err, &domainError)
	return domainError
}
