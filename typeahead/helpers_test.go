package typeahead

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

// recorder is a Strategy that prefix-matches strings and records every
// OnMatch call.
type recorder struct {
	mu      sync.Mutex
	matches []string
}

func (r *recorder) Match(item, buffer string, index int, items []string) bool {
	return StringPrefix()(item, buffer, index, items)
}

func (r *recorder) OnMatch(item string) {
	r.mu.Lock()
	r.matches = append(r.matches, item)
	r.mu.Unlock()
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.matches...)
}

// eventually waits until r has recorded exactly want.
func (r *recorder) eventually(t *testing.T, want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		got := r.calls()
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}, waitFor, tick, "matches: %v", r.calls())
}

// logRecord is one captured Logger call.
type logRecord struct {
	level string
	scope string
	op    string
}

type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) add(level, scope, op string) {
	l.mu.Lock()
	l.records = append(l.records, logRecord{level: level, scope: scope, op: op})
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(scope, op, _ string, _ ...any)   { l.add("debug", scope, op) }
func (l *recordingLogger) Verbose(scope, op, _ string, _ ...any) { l.add("verbose", scope, op) }
func (l *recordingLogger) Warn(scope, op, _ string, _ ...any)    { l.add("warn", scope, op) }
func (l *recordingLogger) Error(scope, op, _ string, _ ...any)   { l.add("error", scope, op) }

func (l *recordingLogger) count(level, scope, op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.records {
		if r.level == level && r.scope == scope && r.op == op {
			n++
		}
	}
	return n
}

// events collects listener deliveries on a channel.
type events struct {
	ch chan Event[string]
}

func newEvents() *events {
	return &events{ch: make(chan Event[string], 64)}
}

func (e *events) spec(name string, opts ListenerOptions) ListenerSpec[string] {
	return ListenerSpec[string]{
		Name: name,
		Callback: func(_ context.Context, ev Event[string]) error {
			e.ch <- ev
			return nil
		},
		Options: opts,
	}
}

// next waits for one delivery.
func (e *events) next(t *testing.T) Event[string] {
	t.Helper()
	select {
	case ev := <-e.ch:
		return ev
	case <-time.After(waitFor):
		t.Fatal("no event delivered")
		return Event[string]{}
	}
}

// none asserts nothing is delivered for a short while.
func (e *events) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-e.ch:
		t.Fatalf("unexpected %s event: %+v", ev.Kind, ev)
	case <-time.After(20 * time.Millisecond):
	}
}

// newTestRegistry returns a registry on a fake clock with one dispatch
// worker, so listener deliveries keep their order.
func newTestRegistry(t *testing.T, opts ...Option) (*Registry[string], *clockz.FakeClock) {
	t.Helper()
	clock := clockz.NewFakeClock()
	reg := NewRegistry[string](append([]Option{WithClock(clock), WithWorkers(1)}, opts...)...)
	t.Cleanup(func() { _ = reg.Close() })
	return reg, clock
}

var names = []string{"Alice", "Alex", "Bob"}
