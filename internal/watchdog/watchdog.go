// internal/watchdog/watchdog.go
package watchdog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/3picF4iL/poe2-chicken-bot/internal/event"
	"github.com/3picF4iL/poe2-chicken-bot/internal/status"
)

var (
	ErrAlreadyRunning = errors.New("watchdog: already running")
	ErrNotRunning     = errors.New("watchdog: not running")
)

// Watchdog converts a stream of resource samples into panic-trigger and
// key-block side effects: exactly one trigger per crisis, and a
// time-bounded suppression window that is released even across read
// failures and on stop.
//
// All state is mutated under mu, and only ever from the run goroutine
// (via Step) or from lifecycle calls while the loop is stopped. Status is
// safe to call from any goroutine at any time.
type Watchdog struct {
	reader Reader
	input  Controller
	log    *slog.Logger
	bus    *event.Bus

	// now is the clock; tests swap it for a manual one.
	now func() time.Time

	mu       sync.Mutex
	cfg      Config
	running  bool
	state    State
	until    time.Time
	last     ResourceSnapshot
	haveLast bool
	misses   int
	health   uint16
	lastErr  string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watchdog with immutable runtime config.
// bus may be nil when no one listens for transitions.
func New(cfg Config, r Reader, c Controller, log *slog.Logger, bus *event.Bus) (*Watchdog, error) {
	if r == nil {
		return nil, errors.New("watchdog: reader required")
	}
	if c == nil {
		return nil, errors.New("watchdog: input controller required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("watchdog: interval must be > 0")
	}
	if cfg.Cooldown <= 0 {
		return nil, errors.New("watchdog: cooldown must be > 0")
	}
	if cfg.MissLimit <= 0 {
		return nil, errors.New("watchdog: miss limit must be > 0")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Watchdog{
		reader: r,
		input:  c,
		log:    log,
		bus:    bus,
		now:    time.Now,
		cfg:    cfg,
		state:  StateIdle,
		health: status.HealthUnknown,
	}, nil
}

// Step performs exactly one tick of the state machine.
//
// Order inside a tick: cooldown expiry first, then the sample, then the
// threshold evaluation. The expiry check never depends on the read, so a
// hung or failing reader cannot stall the unblock. A tick that both
// expires the window and observes a sub-threshold total counts as the
// next qualifying poll and triggers again.
func (w *Watchdog) Step(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step(now)
}

func (w *Watchdog) step(now time.Time) {
	if w.state == StatePanicking && !now.Before(w.until) {
		w.release(now)
	}

	snap, ok := w.reader.Sample()
	if !ok {
		// A miss is not zero resources: skip evaluation entirely.
		w.misses++
		if w.misses == w.cfg.MissLimit {
			// An input error stays on top: it is the liveness-critical
			// warning, and inputOK restores ProcessLost if still missing.
			if w.health != status.HealthInputError {
				w.health = status.HealthProcessLost
			}
			w.log.Warn("target process not found", "misses", w.misses)
			w.publish(event.Event{Kind: event.ProcessLost, At: now})
		}
		return
	}

	if w.misses >= w.cfg.MissLimit {
		w.log.Info("target process found")
		w.publish(event.Event{Kind: event.ProcessFound, At: now})
	}
	w.misses = 0
	if w.health == status.HealthUnknown || w.health == status.HealthProcessLost {
		w.health = status.HealthOK
	}
	w.last, w.haveLast = snap, true

	// No re-trigger while the window is open, even below threshold.
	if w.state != StateIdle {
		return
	}

	// Strict comparison: total == threshold does not trigger.
	if total := snap.Total(); total < w.cfg.Threshold {
		w.trigger(now, total)
	}
}

// trigger fires the Idle -> Panicking edge.
// Action strictly before block: ESC is the action and is also a blocked
// key, so the order must never flip.
func (w *Watchdog) trigger(now time.Time, total uint64) {
	if err := w.input.TriggerPanic(); err != nil {
		w.inputFailure("panic keypress failed", err)
	} else {
		w.inputOK()
	}
	if err := w.input.SetBlock(true); err != nil {
		w.inputFailure("key block failed", err)
	}

	w.until = now.Add(w.cfg.Cooldown)
	w.state = StatePanicking

	w.log.Info("panic triggered",
		"total", total,
		"threshold", w.cfg.Threshold,
		"block_until", w.until,
	)
	w.publish(event.Event{
		Kind:      event.PanicTriggered,
		At:        now,
		Total:     total,
		Threshold: w.cfg.Threshold,
	})
}

// release fires the Panicking -> Idle edge. Purely time-driven in the
// loop; forced by shutdown regardless of the deadline.
func (w *Watchdog) release(now time.Time) {
	if err := w.input.SetBlock(false); err != nil {
		w.inputFailure("key unblock failed", err)
	} else {
		w.inputOK()
	}

	w.state = StateIdle
	w.until = time.Time{}

	w.log.Info("key block released")
	w.publish(event.Event{Kind: event.BlockReleased, At: now})
}

func (w *Watchdog) inputFailure(msg string, err error) {
	w.health = status.HealthInputError
	w.lastErr = msg + ": " + err.Error()
	w.log.Warn(msg, "err", err)
}

func (w *Watchdog) inputOK() {
	if w.health != status.HealthInputError {
		return
	}
	w.lastErr = ""
	if w.misses >= w.cfg.MissLimit {
		w.health = status.HealthProcessLost
	} else {
		w.health = status.HealthOK
	}
}

func (w *Watchdog) publish(e event.Event) {
	if w.bus != nil {
		w.bus.Publish(e)
	}
}

// SetThreshold changes the trigger threshold. Only allowed while the
// loop is stopped; there is no defined mid-run behavior.
func (w *Watchdog) SetThreshold(t uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrAlreadyRunning
	}
	w.cfg.Threshold = t
	return nil
}

// Status returns a torn-free snapshot for concurrent readers.
func (w *Watchdog) Status() status.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := status.Snapshot{
		Running:    w.running,
		Panicking:  w.state == StatePanicking,
		BlockUntil: w.until,
		Health:     w.health,
		Threshold:  w.cfg.Threshold,
		Misses:     w.misses,
		LastError:  w.lastErr,
	}
	if w.haveLast {
		s.HasSample = true
		s.HP = w.last.Health
		s.Mana = w.last.Mana
		s.Shield = w.last.Shield
		s.Total = w.last.Total()
	}
	return s
}
