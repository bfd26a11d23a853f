// Package apperror holds the error taxonomy shared by the intake services.
package apperror

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindInconsistency Kind = "inconsistency"
	KindUnavailable   Kind = "unavailable"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func Validationf(field, format string, args ...any) error {
	return Validation(field, fmt.Sprintf(format, args...))
}

func Inconsistency(field, message string) error {
	return &Error{Kind: KindInconsistency, Field: field, Message: message}
}

// Unavailable marks a collaborator failure; callers may retry.
func Unavailable(message string, err error) error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

func NotFound(field, message string) error {
	return &Error{Kind: KindNotFound, Field: field, Message: message}
}

func Conflict(field, message string) error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsRetryable(err error) bool {
	return Is(err, KindUnavailable)
}

// FromDB translates gorm.ErrRecordNotFound into a NotFound error on field.
func FromDB(err error, field, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(field, message)
	}
	return err
}
