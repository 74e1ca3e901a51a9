package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shengxinking/tempesta/pkg/cli"
	"github.com/shengxinking/tempesta/pkg/control"
)

var stateFlags struct {
	file string
}

var stateCmd = &cobra.Command{
	Use:   "state <start|stop>",
	Short: "Write a control word to the daemon's state file",
	Long: `Write "start" or "stop" into the control state file.

The running daemon watches the file and applies or shuts down the
configuration when the word changes. Writing the current state again
is a no-op.

Examples:
  # Apply the configuration
  tempesta state start

  # Shut the configuration down
  tempesta state stop

  # Use an explicit state file
  tempesta state start --file /run/tempesta/state`,
	Args: cobra.ExactArgs(1),
	RunE: writeState,
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVar(&stateFlags.file, "file", "", "state file path (default: from bootstrap config)")
}

func writeState(cmd *cobra.Command, args []string) error {
	path := stateFlags.file
	if path == "" {
		boot, err := loadBootstrap()
		if err != nil {
			return cli.NewConfigError("", fmt.Sprintf("failed to load bootstrap config: %v", err))
		}
		path = boot.Control.StateFile
	}

	word := strings.ToLower(strings.TrimSpace(args[0]))
	if err := control.WriteState(path, word); err != nil {
		return cli.NewCommandError("state", err)
	}

	fmt.Printf("✓ Wrote %q to %s\n", word, path)
	return nil
}
