// internal/cmd/check.go
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/3picF4iL/poe2-chicken-bot/internal/config"
	"github.com/3picF4iL/poe2-chicken-bot/internal/reader"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file and probe the target process",
	Long: `Load and validate the config file, print the effective settings,
then attach to the target process once and report whether the resource
chains resolve.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	b := cfg.Chickenbot
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "config:      %s\n", cfgPath)
	fmt.Fprintf(out, "process:     %s (window %q)\n", b.Process.Name, b.Process.Window)
	fmt.Fprintf(out, "threshold:   %d\n", b.Threshold)
	fmt.Fprintf(out, "poll:        every %dms, panic cooldown %dms\n",
		b.Poll.IntervalMs, b.Panic.CooldownMs)
	fmt.Fprintf(out, "chains:      hp %d hops, mp %d hops, es %d hops\n",
		len(b.Resources.HP.Offsets),
		len(b.Resources.Mana.Offsets),
		len(b.Resources.Shield.Offsets))
	fmt.Fprintln(out, "config OK")

	fmt.Fprintf(out, "attach:      %s\n", probeTarget(cfg))
	return nil
}

// probeTarget does a single attach-and-sample round trip. The config is
// already known good at this point, so a failed probe is reported but
// does not fail the command: the game simply may not be running yet.
func probeTarget(cfg *config.Config) string {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	rd, err := reader.New(reader.FromConfig(cfg), log)
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}
	defer func() { _ = rd.Close() }()

	snap, ok := rd.Sample()
	if !ok {
		return "process not found"
	}
	return fmt.Sprintf("ok (HP %d  MP %d  ES %d)", snap.Health, snap.Mana, snap.Shield)
}
