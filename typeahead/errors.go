package typeahead

import "errors"

// Registry Errors

// ErrRegistryClosed is returned when using a registry that has been
// closed via Close().
var ErrRegistryClosed = errors.New("typeahead registry is closed")

// ErrAlreadyClosed is returned when calling Close() on a closed registry.
var ErrAlreadyClosed = errors.New("typeahead registry already closed")

// ErrEmptyName is returned when a session name is empty.
var ErrEmptyName = errors.New("session name is empty")

// Listener Errors

// ErrListenerRemoved is returned when removing a listener handle a second
// time.
var ErrListenerRemoved = errors.New("listener already removed")

// ErrListenerNotFound is returned when the listener behind a handle is no
// longer registered, because a later registration with the same identity
// or a Configure call replaced it.
var ErrListenerNotFound = errors.New("listener not found")

// ErrNilListener is returned when registering a listener without a callback.
var ErrNilListener = errors.New("listener callback is nil")

// Dispatch Errors

// ErrQueueFull is returned when the listener dispatch queue cannot accept
// more events. The event is dropped for that listener.
var ErrQueueFull = errors.New("listener queue is full")

// ErrDispatchClosed is returned when dispatching after the registry shut
// its dispatch pool down.
var ErrDispatchClosed = errors.New("listener dispatch is closed")

// ErrListenerPanicked tracks listeners that panicked during execution.
// It is used for metrics and logging; callers never receive it.
var ErrListenerPanicked = errors.New("listener panicked during execution")
