// Package typeahead implements incremental "type to jump" matching over a
// candidate list, keyed by session name.
//
// A Session accumulates single-character keystrokes into a buffer. After
// every keystroke it scans its items in order and reports the first one the
// predicate accepts. Once no keystroke has arrived for the debounce time
// the session scans the final buffer one more time, reports a match again
// if there is one, and clears the buffer.
//
// Basic Usage:
//
//	reg := typeahead.NewRegistry[string]()
//	defer reg.Close()
//
//	cfg := &typeahead.Config[string]{
//		Items: []string{"Alice", "Alex", "Bob"},
//		Strategy: typeahead.Funcs[string]{
//			Predicate: typeahead.StringPrefix(),
//			Matched:   func(name string) { list.Select(name) },
//		},
//		DebounceTime: 300 * time.Millisecond,
//	}
//
//	// Called by the input layer for every key press
//	session, err := reg.Handle("contacts", key, cfg)
//
// Call sites that use the same session name share one buffer. Each call to
// Handle replaces the session's items, strategy, debounce time and
// listeners with what that call passes, so every call site works against
// the latest configuration even in the middle of accumulating.
//
// Double Match On Settle:
//
// The settle scan re-runs the match against the same final buffer, so
// OnMatch usually fires twice for the last keystroke: once synchronously
// and once when the buffer clears. Consumers that care must make OnMatch
// idempotent.
package typeahead

import "time"

// Predicate decides whether item matches the typed buffer. index is the
// position of item within items.
type Predicate[T any] func(item T, buffer string, index int, items []T) bool

// Strategy supplies the match decision and the match side effect.
type Strategy[T any] interface {
	Match(item T, buffer string, index int, items []T) bool
	OnMatch(item T)
}

// Funcs adapts plain functions to Strategy. A nil Predicate never matches;
// a nil Matched does nothing.
type Funcs[T any] struct {
	Predicate Predicate[T]
	Matched   func(item T)
}

// Match implements Strategy.
func (f Funcs[T]) Match(item T, buffer string, index int, items []T) bool {
	if f.Predicate == nil {
		return false
	}
	return f.Predicate(item, buffer, index, items)
}

// OnMatch implements Strategy.
func (f Funcs[T]) OnMatch(item T) {
	if f.Matched != nil {
		f.Matched(item)
	}
}

// Config is the configuration a call site hands to Registry.Handle. It is
// applied wholesale: zero fields fall back to defaults rather than keeping
// what a previous call set.
type Config[T any] struct {
	// Items is the candidate snapshot, scanned in order.
	Items []T

	// Strategy decides matches. Nil never matches.
	Strategy Strategy[T]

	// DebounceTime is the keystroke silence before the buffer resets.
	// Zero uses the registry default.
	DebounceTime time.Duration

	// Listeners observe session events. Entries sharing a name and
	// options collapse to the last one.
	Listeners []ListenerSpec[T]
}

// State is the phase of a session.
type State int

const (
	// Idle: buffer empty, no reset pending.
	Idle State = iota
	// Accumulating: buffer non-empty, one reset pending.
	Accumulating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

// never is the Strategy used when none is configured.
type never[T any] struct{}

func (never[T]) Match(T, string, int, []T) bool { return false }
func (never[T]) OnMatch(T)                      {}
