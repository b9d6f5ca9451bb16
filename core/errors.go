package core

import (
	"errors"
	"fmt"
)

// Sentinel targets for errors.Is checks. The typed errors below unwrap to
// these so callers can branch on kind without inspecting concrete types.
var (
	// ErrNotFound is returned when a referenced artifact, draft or email
	// does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned for status changes the state machine
	// does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPersistence is returned for snapshot write or read failures.
	ErrPersistence = errors.New("persistence failure")
)

// NotFoundError reports an absent entity. Kind is one of "artifact",
// "email" or "draft".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports malformed input for a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvalidTransitionError reports a status change rejected by the state
// machine. Both the current and the requested status are carried so callers
// can surface a precise reason.
type InvalidTransitionError struct {
	Entity string // "email" or "draft"
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s status cannot change from %q to %q", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// PersistenceError wraps a snapshot I/O or codec failure.
type PersistenceError struct {
	Op  string // "save" or "load"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
