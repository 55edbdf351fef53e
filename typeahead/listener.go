package typeahead

import "context"

// EventKind classifies session events. Kinds are bit flags so listener
// options can select several.
type EventKind uint8

const (
	// EventKeystroke: a character was appended to the buffer.
	EventKeystroke EventKind = 1 << iota
	// EventMatch: a scan found an item and OnMatch was called.
	EventMatch
	// EventReset: the buffer cleared and the session went idle.
	EventReset

	// EventAll selects every kind.
	EventAll = EventKeystroke | EventMatch | EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventKeystroke:
		return "keystroke"
	case EventMatch:
		return "match"
	case EventReset:
		return "reset"
	default:
		return "mixed"
	}
}

// Event describes one session transition.
type Event[T any] struct {
	Kind    EventKind
	Session string // session name
	Key     string // keystroke that caused the event; empty for resets
	Buffer  string // buffer at the time of the event, before clearing for resets
	Item    T      // matched item, set for EventMatch
}

// ListenerOptions is part of a listener's identity. Two registrations with
// the same name and equal options are the same listener.
type ListenerOptions struct {
	// On selects the event kinds delivered. Zero means EventAll.
	On EventKind

	// Once removes the listener after its first delivery.
	Once bool
}

func (o ListenerOptions) accepts(kind EventKind) bool {
	if o.On == 0 {
		return true
	}
	return o.On&kind != 0
}

// ListenerSpec is a listener registration.
type ListenerSpec[T any] struct {
	Name     string
	Callback func(ctx context.Context, ev Event[T]) error
	Options  ListenerOptions
}

// listenerKey is the replace-by identity of a listener.
type listenerKey struct {
	name string
	opts ListenerOptions
}

// listenerEntry contains the callback and its identity.
type listenerEntry[T any] struct {
	id       string // Unique identifier for this registration
	key      listenerKey
	callback func(context.Context, Event[T]) error
}

// Listener represents a handle to a registered listener.
// It provides a way to remove the listener from its session.
//
// Handles are returned by Session.AddListener. Listeners installed through
// Config.Listeners have no handle; they live until the next Configure.
//
// Thread Safety:
// Listener methods are safe for concurrent use, but each handle should
// only be used to remove once. Further calls return ErrListenerRemoved.
//
// Example:
//
//	l, err := session.AddListener(typeahead.ListenerSpec[string]{
//	    Name:     "audit",
//	    Callback: audit,
//	    Options:  typeahead.ListenerOptions{On: typeahead.EventMatch},
//	})
//	if err != nil {
//	    return err
//	}
//	defer l.Remove()
type Listener struct {
	// remove performs the actual unregistration. It is cleared after the
	// first call.
	remove func() error
}

// Remove unregisters the listener.
//
// Returns:
//   - nil: Listener removed
//   - ErrListenerRemoved: Remove was already called on this handle
//   - ErrListenerNotFound: The registration was replaced in the meantime
func (l *Listener) Remove() error {
	if l.remove == nil {
		return ErrListenerRemoved
	}
	err := l.remove()
	l.remove = nil
	return err
}
