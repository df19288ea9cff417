// internal/watchdog/runner_test.go
package watchdog

import (
	"context"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Real-clock tests; intervals are kept short and assertions generous so
// they stay stable on loaded machines.

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestRun_TriggersAndReleases(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(900), hit(1500)}}
	c := &recordingController{}

	cfg := Config{
		Threshold: 1000,
		Interval:  5 * time.Millisecond,
		Cooldown:  40 * time.Millisecond,
		MissLimit: 3,
	}
	w, err := New(cfg, r, c, slogt.New(t), nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(t.Context()))
	defer func() { _ = w.Stop() }()

	waitFor(t, time.Second, func() bool { return c.triggerCount() == 1 })
	waitFor(t, time.Second, func() bool { return !c.blocked() && len(c.calls()) >= 2 })

	assert.Equal(t, 1, c.triggerCount())
	assert.False(t, w.Status().Panicking)
}

func TestStart_Twice(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(1500)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	require.NoError(t, w.Start(t.Context()))
	assert.ErrorIs(t, w.Start(t.Context()), ErrAlreadyRunning)
	require.NoError(t, w.Stop())
	assert.ErrorIs(t, w.Stop(), ErrNotRunning)
}

func TestStop_ReleasesBlockBeforeReturning(t *testing.T) {
	// Crisis never ends: the loop is stopped mid-window and must unblock
	// on the way out, long before the cooldown would have expired.
	r := &scriptReader{script: []scripted{hit(100)}}
	c := &recordingController{}

	cfg := Config{
		Threshold: 1000,
		Interval:  5 * time.Millisecond,
		Cooldown:  time.Hour,
		MissLimit: 3,
	}
	w, err := New(cfg, r, c, slogt.New(t), nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(t.Context()))
	waitFor(t, time.Second, func() bool { return c.blocked() })

	require.NoError(t, w.Stop())

	assert.False(t, c.blocked(), "stop must force the unblock")
	st := w.Status()
	assert.False(t, st.Running)
	assert.False(t, st.Panicking)
}

func TestRun_ContextCancelReleasesBlock(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(100)}}
	c := &recordingController{}

	cfg := Config{
		Threshold: 1000,
		Interval:  5 * time.Millisecond,
		Cooldown:  time.Hour,
		MissLimit: 3,
	}
	w, err := New(cfg, r, c, slogt.New(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, w.Start(ctx))
	waitFor(t, time.Second, func() bool { return c.blocked() })

	cancel()
	w.Wait()

	assert.False(t, c.blocked())
	assert.False(t, w.Status().Running)
}
