package timerz

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// Option configures a scheduler during creation.
type Option func(*config)

// config holds internal configuration for scheduler creation.
type config struct {
	clock   clockz.Clock // Time abstraction for deterministic testing
	logger  Logger
	metrics *Metrics
	scope   string
}

// WithClock sets the clock implementation for time operations.
// Default is clockz.RealClock for production use.
// Use clockz.NewFakeClock for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the diagnostics sink. Default is NopLogger.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// withMetrics shares one counter set between the schedulers of a bundle.
func withMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

func withScope(scope string) Option {
	return func(c *config) {
		c.scope = scope
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		clock:  clockz.RealClock,
		logger: NopLogger,
		scope:  "timer",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	if cfg.logger == nil {
		cfg.logger = NopLogger
	}
	if cfg.metrics == nil {
		cfg.metrics = &Metrics{}
	}
	return cfg
}

// Registry maps keys to live one-shot or repeating timers.
//
// At most one timer is live per key. Scheduling under a live key cancels
// the existing timer and installs the new one inside a single critical
// section, so the old timer can never fire in between. Each entry carries
// a generation number; a callback that was already running when its timer
// was stopped sees a stale generation and does nothing.
//
// Thread Safety:
// All methods are safe for concurrent use. Actions run outside the lock
// and may schedule or cancel on the same registry.
type Registry struct {
	clock   clockz.Clock
	logger  Logger
	metrics *Metrics
	scope   string

	mu      sync.Mutex
	entries map[Key]*timerEntry
	gen     uint64
	closed  bool
}

// timerEntry is the live handle recorded under a key.
type timerEntry struct {
	gen    uint64
	timer  clockz.Timer  // set for one-shot entries
	ticker clockz.Ticker // set for repeating entries
	stop   chan struct{} // closes the repeating loop
}

func (e *timerEntry) cancel() {
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.ticker != nil {
		e.ticker.Stop()
		close(e.stop)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := newConfig(opts)
	return &Registry{
		clock:   cfg.clock,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		scope:   cfg.scope,
		entries: make(map[Key]*timerEntry),
	}
}

// Schedule runs action once after delay, replacing any timer live under key.
//
// action runs on a timer goroutine. A returned error is logged; a panic is
// not recovered and, like any panic on a goroutine, terminates the process.
// Wrap the action with Guard unless crashing is the intent.
func (r *Registry) Schedule(key Key, delay time.Duration, action Action) error {
	if action == nil {
		return ErrNilAction
	}
	if delay < 0 {
		return ErrNegativeDelay
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	replaced := r.removeLocked(key)
	gen := r.nextGenLocked()
	entry := &timerEntry{gen: gen}
	entry.timer = r.clock.AfterFunc(delay, func() {
		r.fire(key, gen, action)
	})
	r.entries[key] = entry

	r.recordScheduled(key, replaced, "delay", delay)
	return nil
}

// ScheduleRepeating runs action every period, replacing any timer live
// under key. Ticks run on a goroutine owned by the entry, one at a time.
// As with Schedule, a panic in action terminates the process unless the
// action is wrapped with Guard.
func (r *Registry) ScheduleRepeating(key Key, period time.Duration, action Action) error {
	if err := checkRepeating(period, action); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	replaced := r.removeLocked(key)
	entry := &timerEntry{
		gen:    r.nextGenLocked(),
		ticker: r.clock.NewTicker(period),
		stop:   make(chan struct{}),
	}
	r.entries[key] = entry
	go r.loop(key, entry, action)

	r.recordScheduled(key, replaced, "period", period)
	return nil
}

func checkRepeating(period time.Duration, action Action) error {
	if action == nil {
		return ErrNilAction
	}
	if period <= 0 {
		return ErrInvalidPeriod
	}
	return nil
}

// Cancel stops and removes the timer under key. Cancelling an absent key
// is a no-op and reports false.
func (r *Registry) Cancel(key Key) bool {
	r.mu.Lock()
	removed := r.removeLocked(key)
	r.mu.Unlock()

	if !removed {
		r.logger.Debug(r.scope, "cancel", "no timer under key", "key", key)
		return false
	}
	atomic.AddInt64(&r.metrics.Cancelled, 1)
	r.logger.Debug(r.scope, "cancel", "timer cancelled", "key", key)
	return true
}

// CancelAll stops every live timer and empties the registry. It returns the
// number of timers cancelled. The registry stays usable.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	count := r.cancelAllLocked()
	r.mu.Unlock()

	if count > 0 {
		atomic.AddInt64(&r.metrics.Cancelled, int64(count))
	}
	r.logger.Debug(r.scope, "cancel_all", "timers cancelled", "count", count)
	return count
}

// Has reports whether a timer is live under key.
func (r *Registry) Has(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// isClosed reports whether Close has been called.
func (r *Registry) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// HasNot reports whether no timer is live under key.
func (r *Registry) HasNot(key Key) bool {
	return !r.Has(key)
}

// Len returns the number of live timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Keys returns the live keys in sorted order.
func (r *Registry) Keys() []Key {
	r.mu.Lock()
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	sort.Strings(keys)
	return keys
}

// Metrics returns a snapshot of the counters backing this registry.
func (r *Registry) Metrics() Metrics {
	return r.metrics.snapshot(int64(r.Len()))
}

// Close cancels every live timer and rejects further scheduling.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrAlreadyClosed
	}
	r.closed = true
	count := r.cancelAllLocked()
	r.mu.Unlock()

	if count > 0 {
		atomic.AddInt64(&r.metrics.Cancelled, int64(count))
	}
	r.logger.Debug(r.scope, "close", "registry closed", "cancelled", count)
	return nil
}

// removeLocked stops and deletes the entry under key (must hold lock).
func (r *Registry) removeLocked(key Key) bool {
	entry, ok := r.entries[key]
	if !ok {
		return false
	}
	entry.cancel()
	delete(r.entries, key)
	return true
}

// cancelAllLocked stops every entry and resets the map (must hold lock).
func (r *Registry) cancelAllLocked() int {
	count := len(r.entries)
	for _, entry := range r.entries {
		entry.cancel()
	}
	r.entries = make(map[Key]*timerEntry)
	return count
}

func (r *Registry) nextGenLocked() uint64 {
	r.gen++
	return r.gen
}

func (r *Registry) recordScheduled(key Key, replaced bool, unit string, d time.Duration) {
	atomic.AddInt64(&r.metrics.Scheduled, 1)
	if replaced {
		atomic.AddInt64(&r.metrics.Replaced, 1)
		r.logger.Debug(r.scope, "schedule", "timer replaced", "key", key, unit, d)
		return
	}
	r.logger.Debug(r.scope, "schedule", "timer scheduled", "key", key, unit, d)
}

// fire runs a one-shot action if its entry is still the live one.
// The entry is removed before the action runs.
func (r *Registry) fire(key Key, gen uint64, action Action) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok || entry.gen != gen {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	r.mu.Unlock()

	atomic.AddInt64(&r.metrics.Fired, 1)
	r.run(key, action)
}

// loop drives a repeating entry until it is cancelled.
func (r *Registry) loop(key Key, entry *timerEntry, action Action) {
	for {
		select {
		case <-entry.stop:
			return
		case <-entry.ticker.C():
			if !r.isLive(key, entry.gen) {
				return
			}
			atomic.AddInt64(&r.metrics.Fired, 1)
			r.run(key, action)
		}
	}
}

func (r *Registry) isLive(key Key, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	return ok && entry.gen == gen
}

// run executes action. A returned error is logged and counted; a panic is
// not recovered here.
func (r *Registry) run(key Key, action Action) {
	if err := action(); err != nil {
		atomic.AddInt64(&r.metrics.ActionsFailed, 1)
		r.logger.Error(r.scope, "fire", "action failed", "key", key, "error", err)
	}
}
