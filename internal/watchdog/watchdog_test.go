// internal/watchdog/watchdog_test.go
package watchdog

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3picF4iL/poe2-chicken-bot/internal/event"
	"github.com/3picF4iL/poe2-chicken-bot/internal/status"
)

// scriptReader replays a fixed script of samples, then repeats the last
// entry forever.
type scriptReader struct {
	mu     sync.Mutex
	script []scripted
	i      int
}

type scripted struct {
	snap ResourceSnapshot
	ok   bool
}

func hit(total uint32) scripted {
	return scripted{snap: ResourceSnapshot{Health: total}, ok: true}
}

func miss() scripted {
	return scripted{}
}

func (r *scriptReader) Sample() (ResourceSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.script) == 0 {
		return ResourceSnapshot{}, false
	}
	s := r.script[r.i]
	if r.i < len(r.script)-1 {
		r.i++
	}
	return s.snap, s.ok
}

// recordingController records every call so tests can assert exact side
// effect counts and ordering.
type recordingController struct {
	mu         sync.Mutex
	triggers   int
	blockCalls []bool
	triggerErr error
	blockErr   error
}

func (c *recordingController) TriggerPanic() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers++
	return c.triggerErr
}

func (c *recordingController) SetBlock(active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockCalls = append(c.blockCalls, active)
	return c.blockErr
}

func (c *recordingController) setBlockErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockErr = err
}

func (c *recordingController) triggerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggers
}

func (c *recordingController) calls() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]bool, len(c.blockCalls))
	copy(out, c.blockCalls)
	return out
}

// blocked reports the state implied by the last SetBlock call.
func (c *recordingController) blocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.blockCalls) == 0 {
		return false
	}
	return c.blockCalls[len(c.blockCalls)-1]
}

func testConfig() Config {
	return Config{
		Threshold: 1000,
		Interval:  50 * time.Millisecond,
		Cooldown:  2 * time.Second,
		MissLimit: 3,
	}
}

func newTestWatchdog(t *testing.T, cfg Config, r Reader, c Controller) *Watchdog {
	t.Helper()
	w, err := New(cfg, r, c, slogt.New(t), nil)
	require.NoError(t, err)
	return w
}

// ---- constructor ----

func TestNew_Validation(t *testing.T) {
	r := &scriptReader{}
	c := &recordingController{}

	_, err := New(testConfig(), nil, c, nil, nil)
	assert.Error(t, err)

	_, err = New(testConfig(), r, nil, nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Interval = 0
	_, err = New(cfg, r, c, nil, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Cooldown = 0
	_, err = New(cfg, r, c, nil, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.MissLimit = 0
	_, err = New(cfg, r, c, nil, nil)
	assert.Error(t, err)
}

// ---- threshold edge ----

func TestStep_TotalAtThresholdDoesNotTrigger(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(1000)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	w.Step(time.Now())

	assert.Equal(t, 0, c.triggerCount())
	assert.False(t, w.Status().Panicking)
}

func TestStep_TotalBelowThresholdTriggers(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(999)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	now := time.Now()
	w.Step(now)

	assert.Equal(t, 1, c.triggerCount())
	require.Equal(t, []bool{true}, c.calls())

	st := w.Status()
	assert.True(t, st.Panicking)
	assert.Equal(t, now.Add(2*time.Second), st.BlockUntil)
}

func TestStep_SnapshotTotalSumsAllPools(t *testing.T) {
	// 400+400+300 = 1100 >= 1000: no trigger even though each pool alone
	// is below threshold.
	r := &scriptReader{script: []scripted{
		{snap: ResourceSnapshot{Health: 400, Mana: 400, Shield: 300}, ok: true},
	}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	w.Step(time.Now())

	assert.Equal(t, 0, c.triggerCount())
	st := w.Status()
	assert.Equal(t, uint64(1100), st.Total)
}

// ---- cooldown ----

func TestStep_NoRetriggerDuringCooldown(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(900)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	require.Equal(t, 1, c.triggerCount())

	// Sub-threshold samples keep arriving before the deadline.
	for ms := 50; ms < 2000; ms += 50 {
		w.Step(t0.Add(time.Duration(ms) * time.Millisecond))
	}

	assert.Equal(t, 1, c.triggerCount())
	assert.Equal(t, []bool{true}, c.calls())
	assert.True(t, w.Status().Panicking)
}

func TestStep_UnblockOnDeadline(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(900), hit(1500)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	require.True(t, w.Status().Panicking)

	w.Step(t0.Add(2 * time.Second))

	assert.Equal(t, []bool{true, false}, c.calls())
	st := w.Status()
	assert.False(t, st.Panicking)
	assert.True(t, st.BlockUntil.IsZero())
}

func TestStep_SameTickExpiryCountsAsQualifyingPoll(t *testing.T) {
	// Sustained crisis: the tick that expires the window sees another
	// sub-threshold total and triggers again.
	r := &scriptReader{script: []scripted{hit(900)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	w.Step(t0.Add(2 * time.Second))

	assert.Equal(t, 2, c.triggerCount())
	assert.Equal(t, []bool{true, false, true}, c.calls())
	assert.True(t, w.Status().Panicking)
}

// ---- missed samples ----

func TestStep_MissNeverTriggers(t *testing.T) {
	r := &scriptReader{script: []scripted{miss()}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	for i := 0; i < 10; i++ {
		w.Step(t0.Add(time.Duration(i) * 50 * time.Millisecond))
	}

	assert.Equal(t, 0, c.triggerCount())
	assert.Empty(t, c.calls())
}

func TestStep_MissStreakSurfacesProcessLost(t *testing.T) {
	r := &scriptReader{script: []scripted{miss()}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	w.Step(t0.Add(50 * time.Millisecond))
	assert.NotEqual(t, status.HealthProcessLost, w.Status().Health)

	// Third consecutive miss reaches the limit.
	w.Step(t0.Add(100 * time.Millisecond))
	assert.Equal(t, status.HealthProcessLost, w.Status().Health)
	assert.Equal(t, 3, w.Status().Misses)
}

func TestStep_HitResetsMissStreak(t *testing.T) {
	r := &scriptReader{script: []scripted{miss(), miss(), hit(1500)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	w.Step(t0.Add(50 * time.Millisecond))
	w.Step(t0.Add(100 * time.Millisecond))

	st := w.Status()
	assert.Equal(t, 0, st.Misses)
	assert.Equal(t, status.HealthOK, st.Health)
}

func TestStep_MissNeverDelaysUnblock(t *testing.T) {
	// Trigger, then nothing but read failures until past the deadline.
	r := &scriptReader{script: []scripted{hit(900), miss()}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	require.True(t, w.Status().Panicking)

	for ms := 50; ms < 2000; ms += 50 {
		w.Step(t0.Add(time.Duration(ms) * time.Millisecond))
	}
	assert.True(t, w.Status().Panicking)

	w.Step(t0.Add(2 * time.Second))
	assert.False(t, w.Status().Panicking)
	assert.False(t, c.blocked())
}

// ---- scenario from the drawing board ----

func TestStep_SustainedDipTriggersExactlyOnce(t *testing.T) {
	r := &scriptReader{script: []scripted{
		hit(1200), hit(900), hit(850), hit(1300),
	}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	var released time.Time
	for ms := 0; ms <= 2200; ms += 100 {
		now := t0.Add(time.Duration(ms) * time.Millisecond)
		wasPanicking := w.Status().Panicking
		w.Step(now)
		if wasPanicking && !w.Status().Panicking {
			released = now
		}
	}

	// Panic fired exactly once, at the 900 sample; 850 < 1000 held too
	// but fell inside the window.
	assert.Equal(t, 1, c.triggerCount())
	assert.Equal(t, []bool{true, false}, c.calls())

	// Trigger happened at t0+100ms; unblock lands on the first tick at or
	// after t0+2100ms.
	require.False(t, released.IsZero())
	assert.Equal(t, t0.Add(2100*time.Millisecond), released)
}

// ---- input controller failures ----

func TestStep_ControllerFailureSurfacedNotFatal(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(900)}}
	c := &recordingController{blockErr: errors.New("hook gone")}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)

	st := w.Status()
	assert.Equal(t, status.HealthInputError, st.Health)
	assert.NotEmpty(t, st.LastError)
	// The state machine still entered the window.
	assert.True(t, st.Panicking)

	// And the unblock is still attempted on schedule.
	w.Step(t0.Add(2 * time.Second))
	assert.Equal(t, []bool{true, false}, c.calls())
}

func TestStep_InputRecoveryClearsError(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(900)}}
	c := &recordingController{triggerErr: errors.New("window gone")}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	require.Equal(t, status.HealthInputError, w.Status().Health)

	// Block call succeeded, unblock succeeds too: error clears.
	w.Step(t0.Add(2 * time.Second))
	assert.Equal(t, status.HealthOK, w.Status().Health)
	assert.Empty(t, w.Status().LastError)
}

func TestStep_InputErrorNotDemotedByMissStreak(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(900), miss()}}
	c := &recordingController{blockErr: errors.New("hook gone")}
	w := newTestWatchdog(t, testConfig(), r, c)

	t0 := time.Now()
	w.Step(t0)
	require.Equal(t, status.HealthInputError, w.Status().Health)

	// The hook comes back, but the next reads all miss.
	c.setBlockErr(nil)
	for i := 1; i <= 3; i++ {
		w.Step(t0.Add(time.Duration(i) * 50 * time.Millisecond))
	}

	// The miss streak reached the limit, but the input error stays on top.
	st := w.Status()
	assert.Equal(t, 3, st.Misses)
	assert.Equal(t, status.HealthInputError, st.Health)
	assert.NotEmpty(t, st.LastError)

	// The successful unblock clears the input error, and with the target
	// still missing health falls back to process-lost, not OK.
	w.Step(t0.Add(2 * time.Second))
	st = w.Status()
	assert.Equal(t, status.HealthProcessLost, st.Health)
	assert.Empty(t, st.LastError)
}

// ---- threshold configuration ----

func TestSetThreshold_OnlyWhileStopped(t *testing.T) {
	r := &scriptReader{script: []scripted{hit(1500)}}
	c := &recordingController{}
	w := newTestWatchdog(t, testConfig(), r, c)

	require.NoError(t, w.SetThreshold(700))
	assert.Equal(t, uint64(700), w.Status().Threshold)

	require.NoError(t, w.Start(t.Context()))
	defer func() { _ = w.Stop() }()

	assert.ErrorIs(t, w.SetThreshold(800), ErrAlreadyRunning)
}

// ---- events ----

func TestStep_PublishesTransitionEvents(t *testing.T) {
	bus := event.NewBus()
	sub := bus.Subscribe(16)

	r := &scriptReader{script: []scripted{hit(900), miss()}}
	c := &recordingController{}
	w, err := New(testConfig(), r, c, slogt.New(t), bus)
	require.NoError(t, err)

	t0 := time.Now()
	w.Step(t0)                         // trigger
	w.Step(t0.Add(2 * time.Second))    // release, then first miss
	w.Step(t0.Add(2050 * time.Millisecond))
	w.Step(t0.Add(2100 * time.Millisecond)) // third miss: process lost

	var kinds []event.Kind
	for len(sub) > 0 {
		kinds = append(kinds, (<-sub).Kind)
	}
	assert.Equal(t, []event.Kind{
		event.PanicTriggered,
		event.BlockReleased,
		event.ProcessLost,
	}, kinds)
}
