// Package timerz provides keyed timer registries with replace and cancel
// semantics around timer identity.
//
// Four schedulers share one model: every pending timer or rate gate is
// tracked under a Key, and scheduling under a key that is already live
// first cancels what is there.
//
//   - Debouncer: one-shot, replace-on-reschedule. Rapid calls keep pushing
//     the action into the future until a quiet period elapses.
//   - Throttler: a pure gate. The action runs immediately at most once per
//     window; calls inside the window are dropped, never queued.
//   - Intervals: repeating timers with explicit cancel-by-key and bulk
//     teardown.
//   - Timeouts: one-shot timers with explicit cancel-by-key.
//
// Basic Usage:
//
//	timers := timerz.New()
//	defer timers.Close()
//
//	// Save at most once per quiet second of edits
//	timers.Debounce.Debounce("autosave", time.Second, func() error {
//		return doc.Save()
//	})
//
//	// Refresh at most every 5 seconds, dropping extra requests
//	timers.Throttle.Invoke("refresh", 5*time.Second, func() error {
//		return view.Refresh()
//	})
//
//	// Poll every minute, starting now
//	timers.Interval.Set("poll", time.Minute, poll, timerz.WithAutorun())
//
// Testing:
//
// All schedulers read time from an injected clockz.Clock. Use
// clockz.NewFakeClock with WithClock and advance it explicitly:
//
//	clock := clockz.NewFakeClock()
//	timers := timerz.New(timerz.WithClock(clock))
//	clock.Advance(time.Second)
//
// Failure Model:
//
// Actions return an error. The one-shot and repeating registries log a
// returned error but do not recover panics: an unguarded panic on a timer
// goroutine terminates the process. Wrap an action with Guard when a panic
// must not escape. The throttle gate and interval autorun always
// run their action through Guard and log what it reports.
package timerz

import (
	"strings"

	"github.com/google/uuid"
)

// Key identifies a scheduled timer or throttle bucket.
//
// Unrelated call sites share a bucket by agreeing on a name. A call site
// that wants a bucket of its own asks NewKey for an opaque one:
//
//	const (
//		AutosaveKey timerz.Key = "editor.autosave"
//		ResizeKey   timerz.Key = "window.resize"
//	)
//
//	private := timerz.NewKey("search")
type Key = string

// Action is the unit of work a scheduler runs.
type Action func() error

// NewKey returns a unique opaque key. The prefix is kept for readability in
// logs and may be empty.
func NewKey(prefix string) Key {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	var b strings.Builder
	b.Grow(len(prefix) + 1 + len(id))
	b.WriteString(prefix)
	b.WriteByte('/')
	b.WriteString(id)
	return b.String()
}
