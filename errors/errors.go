// Package errors provides error handling for actiond.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors for the scheduler's failure taxonomy
//
// Usage:
//
//	// Wrap with context
//	if err := store.Save(key, data); err != nil {
//	    return errors.Wrap(err, "failed to persist job set")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle unknown job id
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Mark      = crdb.Mark

	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors for the scheduler's failure taxonomy.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the referenced job does not exist
	ErrNotFound = New("job not found")

	// ErrInvalidSchedule indicates a job spec whose repeat type is missing
	// its required recurrence parameters
	ErrInvalidSchedule = New("invalid schedule")

	// ErrPersistence indicates the document store rejected a write.
	// In-memory state still advances; durability is best-effort.
	ErrPersistence = New("persistence failure")
)

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidSchedule checks if an error is or wraps ErrInvalidSchedule
func IsInvalidSchedule(err error) bool {
	return err != nil && Is(err, ErrInvalidSchedule)
}

// NewNotFound creates a not-found error with a formatted message
func NewNotFound(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidSchedule creates an invalid-schedule error with a formatted message
func NewInvalidSchedule(format string, args ...interface{}) error {
	return Wrap(ErrInvalidSchedule, Newf(format, args...).Error())
}
