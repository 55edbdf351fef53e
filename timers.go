package timerz

import "errors"

// Timers bundles one scheduler of each kind around a shared clock, logger
// and counter set. It is the unit to create at startup, inject where
// needed and Close at shutdown.
//
// Each scheduler keeps its own key space: "save" in Debounce and "save" in
// Timeout are unrelated timers.
type Timers struct {
	Debounce *Debouncer
	Throttle *Throttler
	Interval *Intervals
	Timeout  *Timeouts

	metrics *Metrics
}

// New creates a Timers bundle.
//
// Example:
//
//	timers := timerz.New(
//	    timerz.WithClock(clock),
//	    timerz.WithLogger(timerz.NewSlogLogger(slog.Default())),
//	)
//	defer timers.Close()
func New(opts ...Option) *Timers {
	m := &Metrics{}
	opts = append([]Option{withMetrics(m)}, opts...)
	return &Timers{
		Debounce: NewDebouncer(opts...),
		Throttle: NewThrottler(opts...),
		Interval: NewIntervals(opts...),
		Timeout:  NewTimeouts(opts...),
		metrics:  m,
	}
}

// Metrics returns the shared counters with Active summed over the
// timer-backed schedulers.
func (t *Timers) Metrics() Metrics {
	active := t.Debounce.Len() + t.Interval.Len() + t.Timeout.Len()
	return t.metrics.snapshot(int64(active))
}

// Close cancels every pending timer and interval and rejects further
// scheduling. Throttle timestamps are dropped.
func (t *Timers) Close() error {
	err := errors.Join(
		t.Debounce.Close(),
		t.Interval.Close(),
		t.Timeout.Close(),
	)
	t.Throttle.Reset()
	return err
}
