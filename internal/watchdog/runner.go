// internal/watchdog/runner.go
package watchdog

import (
	"context"
	"time"
)

// Start launches the ticker loop in its own goroutine. One goroutine owns
// every state transition; there is no overlap between ticks.
func (w *Watchdog) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(runCtx)
	return nil
}

func (w *Watchdog) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-ticker.C:
			w.Step(w.now())
		}
	}
}

// shutdown forces the unblock if the loop stops mid-window. No code path
// may leave keys suppressed behind a stopped loop.
func (w *Watchdog) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StatePanicking {
		w.release(w.now())
	}
	w.running = false
}

// Stop cancels the loop and blocks until it has exited, which includes
// the forced unblock. Honored within one poll interval.
func (w *Watchdog) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrNotRunning
	}
	cancel := w.cancel
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
	return nil
}

// Wait blocks until the loop goroutine exits, for callers that stop the
// watchdog through context cancellation instead of Stop.
func (w *Watchdog) Wait() {
	w.wg.Wait()
}
