// internal/cmd/version.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set by the release build via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the chickenbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "chickenbot", version)
	},
}
