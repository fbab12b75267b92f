package service

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable identifier handlers map to HTTP statuses.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeLastAdmin           ErrorCode = "LAST_ADMIN"
	CodeSubscriptionExpired ErrorCode = "SUBSCRIPTION_EXPIRED"
	CodePublishIncomplete   ErrorCode = "PUBLISH_INCOMPLETE"
)

// DomainError is a rejection the caller can act on, as opposed to an
// unexpected storage failure.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error // underlying cause, never shown to clients
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code. A target without a
// message matches every error of its code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Error classes, usable with errors.Is.
var (
	ErrValidation   = &DomainError{Code: CodeValidation}
	ErrNotFound     = &DomainError{Code: CodeNotFound}
	ErrConflict     = &DomainError{Code: CodeConflict}
	ErrForbidden    = &DomainError{Code: CodeForbidden}
	ErrUnauthorized = &DomainError{Code: CodeUnauthorized}
)

func validationError(format string, args ...any) error {
	return &DomainError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the DomainError in err's chain, or "" for
// unexpected errors.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// PublicMessage returns the message safe to show to a client.
func PublicMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "An unexpected error occurred."
}
