// internal/cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/3picF4iL/poe2-chicken-bot/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "chickenbot",
	Short: "Resource-threshold watchdog for Path of Exile 2",
	Long: `chickenbot watches your character's health, mana and energy shield and
hits escape for you when their sum drops below a threshold, then blocks
ESC and SPACE for a moment so nothing interrupts the pause.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "chickenbot.yaml", "path to the config file",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig is the shared load/validate/normalize pipeline.
// Validation errors reach the operator before any loop starts.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}
