package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "VALIDATION"
	CategoryConfiguration ErrorCategory = "CONFIGURATION"
	CategoryNotFound      ErrorCategory = "NOT_FOUND"
	CategoryUnauthorized  ErrorCategory = "UNAUTHORIZED"
	CategoryInternal      ErrorCategory = "INTERNAL"
	CategoryExternal      ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	// Configuration errors are fatal at startup. The service refuses to
	// boot on a missing or weak signing key instead of falling back to a
	// compiled-in default.
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryConfiguration,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	ErrInvalidSigningKey = NewDomainError(
		"INVALID_SIGNING_KEY",
		CategoryConfiguration,
		http.StatusInternalServerError,
		"TOKEN_SIGNING_KEY must be at least 32 bytes",
	)

	ErrInvalidConfig = NewDomainError(
		"INVALID_CONFIG",
		CategoryConfiguration,
		http.StatusInternalServerError,
		"configuration validation failed",
	)

	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		CategoryExternal,
		http.StatusServiceUnavailable,
		"circuit breaker is open",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrRandomSourceFailure = NewDomainError(
		"RANDOM_SOURCE_FAILURE",
		CategoryInternal,
		http.StatusInternalServerError,
		"secure random source unavailable",
	)

	ErrStoreFailure = NewDomainError(
		"STORE_FAILURE",
		CategoryInternal,
		http.StatusInternalServerError,
		"token store operation failed",
	)
)
