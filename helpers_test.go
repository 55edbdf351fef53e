package timerz

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

// logRecord is one captured Logger call.
type logRecord struct {
	level string
	scope string
	op    string
	msg   string
}

// recordingLogger captures every call for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) add(level, scope, op, msg string) {
	l.mu.Lock()
	l.records = append(l.records, logRecord{level: level, scope: scope, op: op, msg: msg})
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(scope, op, msg string, _ ...any)   { l.add("debug", scope, op, msg) }
func (l *recordingLogger) Verbose(scope, op, msg string, _ ...any) { l.add("verbose", scope, op, msg) }
func (l *recordingLogger) Warn(scope, op, msg string, _ ...any)    { l.add("warn", scope, op, msg) }
func (l *recordingLogger) Error(scope, op, msg string, _ ...any)   { l.add("error", scope, op, msg) }

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

// counter is an Action that counts its calls.
type counter struct {
	n int64
}

func (c *counter) action() Action {
	return func() error {
		atomic.AddInt64(&c.n, 1)
		return nil
	}
}

func (c *counter) load() int64 {
	return atomic.LoadInt64(&c.n)
}

// eventually waits for c to reach want.
func (c *counter) eventually(t *testing.T, want int64) {
	t.Helper()
	require.Eventually(t, func() bool { return c.load() == want }, waitFor, tick,
		fmt.Sprintf("expected %d calls, got %d", want, c.load()))
}

// stays asserts that c does not move away from want for a short while.
func (c *counter) stays(t *testing.T, want int64) {
	t.Helper()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, want, c.load())
}
