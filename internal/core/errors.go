package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
)

// ValidationError reports the first rule violated by caller input.
// It is surfaced to the caller verbatim and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing entity by id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a lost idempotence race, e.g. a duplicate
// generation attempt hitting the store-level uniqueness constraint.
// Callers recover locally by treating it as a no-op success.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// ConstraintError reports a domain rule violation on otherwise
// well-formed input, e.g. closing a contract period before its start.
type ConstraintError struct {
	Reason string
}

func (e *ConstraintError) Error() string {
	return "constraint violated: " + e.Reason
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConstraint reports whether err wraps a ConstraintError.
func IsConstraint(err error) bool {
	var c *ConstraintError
	return errors.As(err, &c)
}
