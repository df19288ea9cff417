// internal/cmd/run.go
package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/3picF4iL/poe2-chicken-bot/internal/event"
	"github.com/3picF4iL/poe2-chicken-bot/internal/input"
	"github.com/3picF4iL/poe2-chicken-bot/internal/reader"
	"github.com/3picF4iL/poe2-chicken-bot/internal/ui"
	"github.com/3picF4iL/poe2-chicken-bot/internal/watchdog"
)

var headless bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the watchdog",
	Long: `Start the watchdog with the operator panel.

With --headless the panel is skipped: the loop starts immediately with
the configured threshold and runs until interrupted.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&headless, "headless", false, "run without the operator panel")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// One instance per machine: two hooks fighting over the same keys
	// would leave the loser unable to guarantee its unblock.
	lock := flock.New(cfgPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !locked {
		return errors.New("another chickenbot instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	// The panel owns the terminal; logs would tear it apart.
	logOut := io.Writer(os.Stderr)
	if !headless {
		logOut = io.Discard
	}
	log := slog.New(slog.NewTextHandler(logOut, nil))

	b := cfg.Chickenbot

	rd, err := reader.New(reader.FromConfig(cfg), log)
	if err != nil {
		return err
	}
	defer func() { _ = rd.Close() }()

	ctrl, err := input.New(b.Process.Window, log)
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	bus := event.NewBus()

	wd, err := watchdog.New(watchdog.Config{
		Threshold: uint64(b.Threshold),
		Interval:  time.Duration(b.Poll.IntervalMs) * time.Millisecond,
		Cooldown:  time.Duration(b.Panic.CooldownMs) * time.Millisecond,
		MissLimit: b.Reader.MissLimit,
	}, rd, ctrl, log, bus)
	if err != nil {
		return err
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := wd.Start(ctx); err != nil {
			return err
		}
		log.Info("watchdog running",
			"threshold", b.Threshold,
			"interval_ms", b.Poll.IntervalMs,
			"cooldown_ms", b.Panic.CooldownMs,
		)

		<-ctx.Done()
		wd.Wait()
		return nil
	}

	m := ui.New(wd, cfg, cfgPath, bus.Subscribe(16))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	// Quit path in the panel stops the loop; this is the safety net.
	if stopErr := wd.Stop(); stopErr != nil && !errors.Is(stopErr, watchdog.ErrNotRunning) {
		return stopErr
	}
	return nil
}
