package timerz

import "time"

// Debouncer delays an action until a quiet period with no retriggering has
// elapsed. Each Debounce under a key postpones the pending action by
// replacing it.
type Debouncer struct {
	timers *Registry
}

// NewDebouncer creates a debouncer with its own key space.
func NewDebouncer(opts ...Option) *Debouncer {
	return &Debouncer{
		timers: NewRegistry(append([]Option{withScope("debounce")}, opts...)...),
	}
}

// Debounce schedules action to run after delay under key. A pending action
// under the same key is cancelled first; only the latest one can fire.
// A panic in action terminates the process unless it is wrapped with Guard.
func (d *Debouncer) Debounce(key Key, delay time.Duration, action Action) error {
	return d.timers.Schedule(key, delay, action)
}

// Cancel drops the pending action under key, if any.
func (d *Debouncer) Cancel(key Key) bool {
	return d.timers.Cancel(key)
}

// Pending reports whether an action is waiting under key.
func (d *Debouncer) Pending(key Key) bool {
	return d.timers.Has(key)
}

// Len returns the number of pending actions.
func (d *Debouncer) Len() int {
	return d.timers.Len()
}

// CancelAll drops every pending action.
func (d *Debouncer) CancelAll() int {
	return d.timers.CancelAll()
}

// Metrics returns a snapshot of the counters backing this debouncer.
func (d *Debouncer) Metrics() Metrics {
	return d.timers.Metrics()
}

// Close drops every pending action and rejects further calls.
func (d *Debouncer) Close() error {
	return d.timers.Close()
}
