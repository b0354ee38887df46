package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknownNode    = errors.New("unknown node")
	ErrUnknownCenter  = errors.New("center not among nodes")
	ErrStaleMerge     = errors.New("stale merge")
)

// MergeError provides structured error information for rejected merges.
type MergeError struct {
	Op     string // Operation that failed (e.g., "Merge", "Decode")
	Entity string // Entity type ("node", "link", "center", "payload")
	Key    string // Entity key (if applicable)
	Field  string // Offending field
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *MergeError) Error() string {
	switch {
	case e.Key != "" && e.Field != "":
		return fmt.Sprintf("%s %s %q (field %s): %v", e.Op, e.Entity, e.Key, e.Field, e.Cause)
	case e.Key != "":
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Entity, e.Key, e.Cause)
	case e.Field != "":
		return fmt.Sprintf("%s %s (field %s): %v", e.Op, e.Entity, e.Field, e.Cause)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *MergeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *MergeError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building MergeErrors.
type ErrorBuilder struct {
	err MergeError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: MergeError{Op: op}}
}

// Node sets the entity to "node" with the given key.
func (b *ErrorBuilder) Node(key string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.Key = key
	return b
}

// Link sets the entity to "link" with the given key.
func (b *ErrorBuilder) Link(key string) *ErrorBuilder {
	b.err.Entity = "link"
	b.err.Key = key
	return b
}

// Payload sets the entity to "payload".
func (b *ErrorBuilder) Payload() *ErrorBuilder {
	b.err.Entity = "payload"
	return b
}

// Field sets the offending field name.
func (b *ErrorBuilder) Field(name string) *ErrorBuilder {
	b.err.Field = name
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed MergeError.
func (b *ErrorBuilder) Build() *MergeError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}
