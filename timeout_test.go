package timerz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

func TestTimeoutFires(t *testing.T) {
	clock := clockz.NewFakeClock()
	to := NewTimeouts(WithClock(clock))
	defer to.Close()

	var c counter
	require.NoError(t, to.Set("expire", time.Minute, c.action()))
	assert.True(t, to.Has("expire"))

	clock.Advance(time.Minute)
	c.eventually(t, 1)
	require.Eventually(t, func() bool { return to.Len() == 0 }, waitFor, tick)
}

func TestTimeoutClear(t *testing.T) {
	clock := clockz.NewFakeClock()
	to := NewTimeouts(WithClock(clock))
	defer to.Close()

	var c counter
	require.NoError(t, to.Set("expire", time.Minute, c.action()))
	assert.True(t, to.Clear("expire"))
	assert.False(t, to.Clear("expire"))
	assert.False(t, to.Clear("unknown"))

	clock.Advance(time.Minute)
	c.stays(t, 0)
}

func TestTimeoutReplace(t *testing.T) {
	clock := clockz.NewFakeClock()
	to := NewTimeouts(WithClock(clock))
	defer to.Close()

	var first, second counter
	require.NoError(t, to.Set("k", time.Second, first.action()))
	require.NoError(t, to.Set("k", 2*time.Second, second.action()))

	clock.Advance(time.Second)
	first.stays(t, 0)
	clock.Advance(time.Second)
	second.eventually(t, 1)
}

func TestTimeoutCancelAll(t *testing.T) {
	clock := clockz.NewFakeClock()
	to := NewTimeouts(WithClock(clock))
	defer to.Close()

	var c counter
	require.NoError(t, to.Set("a", time.Second, c.action()))
	require.NoError(t, to.Set("b", time.Second, c.action()))
	assert.Equal(t, 2, to.CancelAll())
	assert.Equal(t, int64(2), to.Metrics().Cancelled)

	clock.Advance(time.Second)
	c.stays(t, 0)
}
