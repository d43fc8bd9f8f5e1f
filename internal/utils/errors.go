// internal/utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION_ERROR"
	KindAuthentication ErrorKind = "UNAUTHORIZED"
	KindAuthorization  ErrorKind = "FORBIDDEN"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindPersistence    ErrorKind = "PERSISTENCE_ERROR"
	KindExternal       ErrorKind = "EXTERNAL_SERVICE_ERROR"
	KindInternal       ErrorKind = "INTERNAL_ERROR"
)

// AppError is the error type services return to handlers. Message is safe to
// show to clients for 4xx kinds; Err is only ever logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func AuthenticationError(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message}
}

func ForbiddenError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func PersistenceError(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

func ExternalServiceError(message string, err error) *AppError {
	return &AppError{Kind: KindExternal, Message: message, Err: err}
}

// KindOf returns KindInternal for errors that are not an *AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func StatusCodeFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
