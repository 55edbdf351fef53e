package timerz

import "errors"

// Lifecycle Errors
//
// These errors are returned based on a scheduler's lifecycle state.

// ErrRegistryClosed is returned when scheduling on a registry that has
// been closed via Close().
var ErrRegistryClosed = errors.New("timer registry is closed")

// ErrAlreadyClosed is returned when calling Close() on a registry that has
// already been closed.
var ErrAlreadyClosed = errors.New("timer registry already closed")

// Scheduling Errors
//
// These errors are returned when a schedule request is malformed. Nothing
// is scheduled and any timer already live under the key is left alone.

// ErrNilAction is returned when scheduling a nil Action.
var ErrNilAction = errors.New("action is nil")

// ErrNegativeDelay is returned when a one-shot delay is below zero.
// A zero delay is valid and fires on the next clock tick.
var ErrNegativeDelay = errors.New("delay must not be negative")

// ErrInvalidPeriod is returned when a repeating period is zero or negative.
var ErrInvalidPeriod = errors.New("period must be positive")

// Execution Errors

// ErrActionPanicked wraps a panic recovered by Guard. The recovered value
// is part of the error message.
var ErrActionPanicked = errors.New("action panicked")
