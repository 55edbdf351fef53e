package typeahead

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/timerz"
)

func TestRegistryGetOrCreate(t *testing.T) {
	reg, _ := newTestRegistry(t, WithDefaultDebounce(300*time.Millisecond))

	s, err := reg.GetOrCreate("contacts", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "contacts", s.Name())
	assert.Equal(t, 300*time.Millisecond, s.DebounceTime())
	assert.Equal(t, Idle, s.State())
	assert.NotEmpty(t, s.ID())

	again, err := reg.GetOrCreate("contacts", &recorder{}, time.Hour)
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Equal(t, 300*time.Millisecond, again.DebounceTime(), "existing session is returned unchanged")

	_, err = reg.GetOrCreate("", nil, 0)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRegistryDefaultDebounce(t *testing.T) {
	reg := NewRegistry[string](WithClock(clockz.NewFakeClock()))
	defer reg.Close()

	s, err := reg.GetOrCreate("contacts", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, s.DebounceTime())
}

func TestRegistryHandleSharesSessions(t *testing.T) {
	reg, _ := newTestRegistry(t)
	cfg := &Config[string]{Items: names, Strategy: &recorder{}}

	a, err := reg.Handle("contacts", "b", cfg)
	require.NoError(t, err)
	b, err := reg.Handle("contacts", "o", cfg)
	require.NoError(t, err)
	other, err := reg.Handle("files", "x", cfg)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, "bo", a.Buffer())
	assert.Equal(t, "x", other.Buffer())
	assert.Equal(t, []string{"contacts", "files"}, reg.Names())
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get("files")
	require.True(t, ok)
	assert.Same(t, other, got)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistryHandleNilConfig(t *testing.T) {
	reg, _ := newTestRegistry(t)

	s, err := reg.Handle("contacts", "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", s.Buffer())
	assert.Equal(t, int64(0), reg.Metrics().Matches)
}

func TestRegistryRemove(t *testing.T) {
	reg, clock := newTestRegistry(t)
	rec := &recorder{}

	s, err := reg.Handle("contacts", "a", &Config[string]{Items: names, Strategy: rec, DebounceTime: time.Second})
	require.NoError(t, err)

	assert.True(t, reg.Remove("contacts"))
	assert.False(t, reg.Remove("contacts"))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, "", s.Buffer(), "removed session is reset")

	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.calls(), 1, "pending settle was cancelled")

	fresh, err := reg.GetOrCreate("contacts", nil, 0)
	require.NoError(t, err)
	assert.NotSame(t, s, fresh)
}

func TestRegistryClear(t *testing.T) {
	reg, _ := newTestRegistry(t)
	cfg := &Config[string]{Items: names, Strategy: &recorder{}}

	a, err := reg.Handle("a", "x", cfg)
	require.NoError(t, err)
	_, err = reg.Handle("b", "y", cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Clear())
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 0, reg.Clear())
}

func TestRegistryClose(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Handle("contacts", "a", &Config[string]{Items: names})
	require.NoError(t, err)

	require.NoError(t, reg.Close())
	assert.ErrorIs(t, reg.Close(), ErrAlreadyClosed)
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Handle("contacts", "a", nil)
	assert.ErrorIs(t, err, ErrRegistryClosed)
	_, err = reg.GetOrCreate("contacts", nil, 0)
	assert.ErrorIs(t, err, ErrRegistryClosed)
}

func TestRegistrySharedDebouncer(t *testing.T) {
	clock := clockz.NewFakeClock()
	debouncer := timerz.NewDebouncer(timerz.WithClock(clock))
	defer debouncer.Close()

	reg := NewRegistry[string](WithDebouncer(debouncer))
	s, err := reg.Handle("contacts", "a", &Config[string]{Items: names, DebounceTime: time.Second})
	require.NoError(t, err)
	assert.True(t, debouncer.Pending(s.ID()), "settle is keyed by session ID")

	require.NoError(t, reg.Close())
	assert.False(t, debouncer.Pending(s.ID()))

	// The debouncer belongs to the caller and stays open
	require.NoError(t, debouncer.Debounce("other", time.Second, func() error { return nil }))
}

func TestRegistryMetrics(t *testing.T) {
	reg, clock := newTestRegistry(t, WithQueueSize(8))
	cfg := &Config[string]{Items: names, Strategy: &recorder{}, DebounceTime: time.Second}

	_, err := reg.Handle("contacts", "a", cfg)
	require.NoError(t, err)
	_, err = reg.Handle("contacts", "Shift", cfg)
	require.NoError(t, err)
	clock.Advance(time.Second)

	require.Eventually(t, func() bool { return reg.Metrics().Resets == 1 }, waitFor, tick)
	m := reg.Metrics()
	assert.Equal(t, int64(1), m.Sessions)
	assert.Equal(t, int64(1), m.KeystrokesHandled)
	assert.Equal(t, int64(1), m.KeystrokesIgnored)
	assert.Equal(t, int64(2), m.Matches)
	assert.Equal(t, int64(8), m.QueueCapacity)
}

func TestRegistryLogging(t *testing.T) {
	logger := &recordingLogger{}
	reg, _ := newTestRegistry(t, WithLogger(logger))

	s, err := reg.Handle("contacts", "Tab", &Config[string]{
		Listeners: []ListenerSpec[string]{{Name: "broken"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, s.ListenerCount())
	assert.Equal(t, 1, logger.count("warn", "typeahead", "configure"))
	assert.Equal(t, 1, logger.count("verbose", "typeahead", "keystroke"))
	assert.Equal(t, 1, logger.count("debug", "typeahead", "create"))
}

func TestRegistryCloseCancelsListenerContext(t *testing.T) {
	reg, _ := newTestRegistry(t)
	s, err := reg.GetOrCreate("contacts", nil, 0)
	require.NoError(t, err)

	_, err = s.AddListener(ListenerSpec[string]{
		Name: "waits",
		Callback: func(ctx context.Context, _ Event[string]) error {
			<-ctx.Done()
			return ctx.Err()
		},
		Options: ListenerOptions{On: EventKeystroke},
	})
	require.NoError(t, err)
	s.HandleKeystroke("a")

	closed := make(chan error, 1)
	go func() { closed <- reg.Close() }()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Close waited on a listener blocked on its context")
	}
	m := reg.Metrics()
	assert.Equal(t, int64(1), m.ListenersExpired)
	assert.Equal(t, int64(0), m.ListenersFailed)
}
