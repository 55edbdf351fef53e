package timerz

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// Throttler rate-limits actions per key using leading edge behavior.
//
// The first invocation under a key runs immediately. Later invocations run
// only once minInterval has elapsed since the last one that ran; anything
// inside the window is dropped, not deferred. Uses timestamp comparison
// instead of timer goroutines, so nothing is ever pending.
type Throttler struct {
	clock   clockz.Clock
	logger  Logger
	metrics *Metrics

	mu   sync.Mutex
	last map[Key]time.Time
}

// NewThrottler creates a throttler with no recorded invocations.
func NewThrottler(opts ...Option) *Throttler {
	cfg := newConfig(opts)
	return &Throttler{
		clock:   cfg.clock,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		last:    make(map[Key]time.Time),
	}
}

// Invoke runs action now if at least minInterval has elapsed since the last
// invocation that ran under key, and reports whether it ran.
//
// A key that never ran counts as having run exactly minInterval ago, so the
// first call always passes. The action runs synchronously under Guard; its
// error or panic is logged and swallowed. The timestamp moves to now even
// when the action fails.
func (t *Throttler) Invoke(key Key, minInterval time.Duration, action Action) bool {
	if action == nil {
		return false
	}

	t.mu.Lock()
	now := t.clock.Now()
	elapsed := minInterval
	if last, ok := t.last[key]; ok {
		elapsed = now.Sub(last)
	}
	if elapsed < minInterval {
		t.mu.Unlock()
		atomic.AddInt64(&t.metrics.ThrottleDropped, 1)
		t.logger.Debug("throttle", "invoke", "dropped inside window",
			"key", key, "elapsed", elapsed, "min_interval", minInterval)
		return false
	}
	t.last[key] = now
	t.mu.Unlock()

	atomic.AddInt64(&t.metrics.ThrottleAllowed, 1)
	if err := Guard(action)(); err != nil {
		atomic.AddInt64(&t.metrics.ActionsFailed, 1)
		t.logger.Error("throttle", "invoke", "action failed", "key", key, "error", err)
	}
	return true
}

// LastInvoked returns when an action last ran under key.
func (t *Throttler) LastInvoked(key Key) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.last[key]
	return last, ok
}

// Forget drops the timestamp under key so the next Invoke passes.
func (t *Throttler) Forget(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.last[key]; !ok {
		return false
	}
	delete(t.last, key)
	return true
}

// Prune drops every timestamp at least age old and returns how many were
// removed. Timestamps are never evicted automatically.
func (t *Throttler) Prune(age time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	count := 0
	for key, last := range t.last {
		if now.Sub(last) >= age {
			delete(t.last, key)
			count++
		}
	}
	return count
}

// Reset drops every timestamp.
func (t *Throttler) Reset() {
	t.mu.Lock()
	t.last = make(map[Key]time.Time)
	t.mu.Unlock()
}

// Len returns the number of keys with a recorded invocation.
func (t *Throttler) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}

// Metrics returns a snapshot of the counters backing this throttler.
func (t *Throttler) Metrics() Metrics {
	return t.metrics.snapshot(0)
}
