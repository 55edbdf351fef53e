package timerz

import (
	"sync/atomic"
	"time"
)

// IntervalOption configures a single Intervals.Set call.
type IntervalOption func(*intervalConfig)

type intervalConfig struct {
	autorun bool
}

// WithAutorun runs the action once, synchronously, before the first period.
// A failure of that run is logged and never returned from Set.
func WithAutorun() IntervalOption {
	return func(c *intervalConfig) {
		c.autorun = true
	}
}

// Intervals is a set of named repeating timers.
type Intervals struct {
	timers *Registry
}

// NewIntervals creates an empty interval set.
func NewIntervals(opts ...Option) *Intervals {
	return &Intervals{
		timers: NewRegistry(append([]Option{withScope("interval")}, opts...)...),
	}
}

// Set runs action every period under key, replacing any interval already
// live there. The returned error reports only scheduling problems.
//
// With WithAutorun the first run happens on the calling goroutine and the
// interval is installed only after it returns, so the autorun never
// overlaps a tick and Clear(key) from inside it has nothing to clear.
// Ticks are not guarded: a panic in a tick terminates the process unless
// action is wrapped with Guard.
func (iv *Intervals) Set(key Key, period time.Duration, action Action, opts ...IntervalOption) error {
	var cfg intervalConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkRepeating(period, action); err != nil {
		return err
	}
	if iv.timers.isClosed() {
		return ErrRegistryClosed
	}

	if cfg.autorun {
		if err := Guard(action)(); err != nil {
			atomic.AddInt64(&iv.timers.metrics.ActionsFailed, 1)
			iv.timers.logger.Error("interval", "autorun", "autorun failed", "key", key, "error", err)
		}
	}
	return iv.timers.ScheduleRepeating(key, period, action)
}

// Clear cancels the interval under key. Clearing an absent key is a no-op.
func (iv *Intervals) Clear(key Key) bool {
	return iv.timers.Cancel(key)
}

// CancelAll cancels every interval and empties the set.
func (iv *Intervals) CancelAll() int {
	return iv.timers.CancelAll()
}

// Has reports whether an interval is live under key.
func (iv *Intervals) Has(key Key) bool { return iv.timers.Has(key) }

// Len returns the number of live intervals.
func (iv *Intervals) Len() int { return iv.timers.Len() }

// Metrics returns a snapshot of the counters backing this set.
func (iv *Intervals) Metrics() Metrics { return iv.timers.Metrics() }

// Close cancels every interval and rejects further calls to Set.
func (iv *Intervals) Close() error { return iv.timers.Close() }
