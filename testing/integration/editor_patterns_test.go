package integration

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/timerz"
)

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

// Keys for an editor wiring its timers at startup
const (
	autosaveKey timerz.Key = "editor.autosave"
	previewKey  timerz.Key = "editor.preview"
	statusKey   timerz.Key = "editor.status"
	idleKey     timerz.Key = "editor.idle"
)

// Editor is a document buffer that saves after a quiet period, refreshes
// its preview at a bounded rate and locks after inactivity.
type Editor struct {
	timers *timerz.Timers

	mu       sync.Mutex
	text     string
	saved    string
	saves    atomic.Int64
	previews atomic.Int64
	locked   atomic.Bool
	failSave atomic.Bool
}

func NewEditor(timers *timerz.Timers) *Editor {
	return &Editor{timers: timers}
}

func (e *Editor) Type(s string) error {
	e.mu.Lock()
	e.text += s
	e.mu.Unlock()

	e.timers.Throttle.Invoke(previewKey, 100*time.Millisecond, func() error {
		e.previews.Add(1)
		return nil
	})
	if err := e.timers.Timeout.Set(idleKey, time.Minute, func() error {
		e.locked.Store(true)
		return nil
	}); err != nil {
		return err
	}
	return e.timers.Debounce.Debounce(autosaveKey, time.Second, e.save)
}

func (e *Editor) save() error {
	if e.failSave.Load() {
		return errors.New("disk full")
	}
	e.mu.Lock()
	e.saved = e.text
	e.mu.Unlock()
	e.saves.Add(1)
	return nil
}

func (e *Editor) Saved() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

func TestEditorAutosaveAfterQuietPeriod(t *testing.T) {
	clock := clockz.NewFakeClock()
	timers := timerz.New(timerz.WithClock(clock))
	defer timers.Close()

	ed := NewEditor(timers)
	for _, s := range []string{"h", "e", "l", "l", "o"} {
		require.NoError(t, ed.Type(s))
		clock.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, int64(0), ed.saves.Load())

	clock.Advance(800 * time.Millisecond)
	require.Eventually(t, func() bool { return ed.saves.Load() == 1 }, waitFor, tick)
	assert.Equal(t, "hello", ed.Saved())

	// Five keystrokes 200ms apart pass the 100ms preview gate every time
	assert.Equal(t, int64(5), ed.previews.Load())
	assert.False(t, ed.locked.Load())
}

func TestEditorPreviewThrottled(t *testing.T) {
	clock := clockz.NewFakeClock()
	timers := timerz.New(timerz.WithClock(clock))
	defer timers.Close()

	ed := NewEditor(timers)
	for i := 0; i < 10; i++ {
		require.NoError(t, ed.Type("x"))
		clock.Advance(25 * time.Millisecond)
	}

	// Calls at 0, 100, 200 ms pass; everything between is dropped
	assert.Equal(t, int64(3), ed.previews.Load())
	m := timers.Metrics()
	assert.Equal(t, int64(3), m.ThrottleAllowed)
	assert.Equal(t, int64(7), m.ThrottleDropped)
}

func TestEditorLocksWhenIdle(t *testing.T) {
	clock := clockz.NewFakeClock()
	timers := timerz.New(timerz.WithClock(clock))
	defer timers.Close()

	ed := NewEditor(timers)
	require.NoError(t, ed.Type("a"))

	clock.Advance(59 * time.Second)
	require.NoError(t, ed.Type("b"))
	clock.Advance(59 * time.Second)
	assert.False(t, ed.locked.Load())

	clock.Advance(time.Second)
	require.Eventually(t, ed.locked.Load, waitFor, tick)
}

func TestEditorSaveFailureReported(t *testing.T) {
	clock := clockz.NewFakeClock()
	timers := timerz.New(timerz.WithClock(clock))
	defer timers.Close()

	ed := NewEditor(timers)
	ed.failSave.Store(true)
	require.NoError(t, ed.Type("a"))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return timers.Metrics().ActionsFailed == 1 }, waitFor, tick)
	assert.Equal(t, "", ed.Saved())
}

func TestEditorStatusPolling(t *testing.T) {
	clock := clockz.NewFakeClock()
	timers := timerz.New(timerz.WithClock(clock))

	var polls atomic.Int64
	require.NoError(t, timers.Interval.Set(statusKey, 5*time.Second, func() error {
		polls.Add(1)
		return nil
	}, timerz.WithAutorun()))
	assert.Equal(t, int64(1), polls.Load())

	clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return polls.Load() == 2 }, waitFor, tick)

	require.NoError(t, timers.Close())
	clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(2), polls.Load())
}
