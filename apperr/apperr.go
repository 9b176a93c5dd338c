// Package apperr holds the error taxonomy returned by the services.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation       Kind = "VALIDATION"
	UniqueConstraint Kind = "UNIQUE_CONSTRAINT"
	NotFound         Kind = "NOT_FOUND"
	Permission       Kind = "PERMISSION"
	Unauthenticated  Kind = "UNAUTHENTICATED"
)

// Error is a caller-facing failure. Field names the offending input field or
// the rule that was broken.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

var (
	ErrValidation       = &Error{Kind: Validation}
	ErrUniqueConstraint = &Error{Kind: UniqueConstraint}
	ErrNotFound         = &Error{Kind: NotFound}
	ErrPermission       = &Error{Kind: Permission}
	ErrUnauthenticated  = &Error{Kind: Unauthenticated}
)

func NewValidation(field, format string, args ...any) *Error {
	return &Error{Kind: Validation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewUnique(field, format string, args ...any) *Error {
	return &Error{Kind: UniqueConstraint, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(field, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewPermission(format string, args ...any) *Error {
	return &Error{Kind: Permission, Message: fmt.Sprintf(format, args...)}
}

// NewUnauthenticated reports missing or bad credentials.
func NewUnauthenticated(format string, args ...any) *Error {
	return &Error{Kind: Unauthenticated, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
