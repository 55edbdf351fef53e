package timerz

import "sync/atomic"

// Metrics provides observability data for the schedulers.
// All counter fields use atomic operations for thread safety.
// Schedulers built by New share one set of counters.
type Metrics struct {
	// Timer Counters
	Scheduled int64 // Timers installed, including replacements
	Replaced  int64 // Schedules that cancelled a live timer under the same key
	Fired     int64 // One-shot fires and repeating ticks that ran their action
	Cancelled int64 // Timers removed by Cancel, CancelAll or Close

	// Throttle Counters
	ThrottleAllowed int64 // Invocations that passed the gate
	ThrottleDropped int64 // Invocations dropped inside the window

	// Failures
	ActionsFailed int64 // Actions that returned an error or panicked under Guard

	// Active is the number of live timers at snapshot time (not a counter)
	Active int64
}

func (m *Metrics) snapshot(active int64) Metrics {
	return Metrics{
		Scheduled:       atomic.LoadInt64(&m.Scheduled),
		Replaced:        atomic.LoadInt64(&m.Replaced),
		Fired:           atomic.LoadInt64(&m.Fired),
		Cancelled:       atomic.LoadInt64(&m.Cancelled),
		ThrottleAllowed: atomic.LoadInt64(&m.ThrottleAllowed),
		ThrottleDropped: atomic.LoadInt64(&m.ThrottleDropped),
		ActionsFailed:   atomic.LoadInt64(&m.ActionsFailed),
		Active:          active,
	}
}
