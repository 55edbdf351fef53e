package timerz

import "time"

// Timeouts is a set of named one-shot timers with explicit cancellation.
type Timeouts struct {
	timers *Registry
}

// NewTimeouts creates an empty timeout set.
func NewTimeouts(opts ...Option) *Timeouts {
	return &Timeouts{
		timers: NewRegistry(append([]Option{withScope("timeout")}, opts...)...),
	}
}

// Set runs action once after delay, replacing any timeout live under key.
// A panic in action terminates the process unless it is wrapped with Guard.
func (t *Timeouts) Set(key Key, delay time.Duration, action Action) error {
	return t.timers.Schedule(key, delay, action)
}

// Clear cancels the timeout under key. Clearing an absent key is a no-op.
func (t *Timeouts) Clear(key Key) bool {
	return t.timers.Cancel(key)
}

// Has reports whether a timeout is pending under key.
func (t *Timeouts) Has(key Key) bool { return t.timers.Has(key) }

// Len returns the number of pending timeouts.
func (t *Timeouts) Len() int { return t.timers.Len() }

// CancelAll cancels every pending timeout and returns how many there were.
func (t *Timeouts) CancelAll() int { return t.timers.CancelAll() }

// Metrics returns a snapshot of the counters backing this set.
func (t *Timeouts) Metrics() Metrics { return t.timers.Metrics() }

// Close cancels every pending timeout and rejects further calls to Set.
func (t *Timeouts) Close() error { return t.timers.Close() }
