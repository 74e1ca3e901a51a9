package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shengxinking/tempesta/pkg/config"
)

// defaultBootstrapFile is where commands look for the daemon's
// bootstrap configuration when --config is not given.
const defaultBootstrapFile = "/etc/tempesta/tempesta.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tempesta",
	Short: "Tempesta - block-structured configuration daemon",
	Long: `Tempesta is a configuration framework built around one idea: modules
declare typed specifications for the entries they accept, and the
daemon drives them through an all-or-nothing configuration lifecycle.

The daemon provides:
  - A watched state file: writing "start" or "stop" into it applies or
    shuts down the configuration
  - File and git document sources
  - Apply auditing and snapshot history in SQLite
  - Prometheus metrics and health probes while a configuration is live

For more information, visit: https://github.com/shengxinking/tempesta`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultBootstrapFile, "bootstrap config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadBootstrap reads the daemon's bootstrap configuration. The
// built-in default path is allowed to be absent so every command can
// run on pure defaults; an explicit --config that does not exist is
// an error.
func loadBootstrap() (*config.Config, error) {
	boot, err := config.LoadWithEnvOverrides(cfgFile)
	if err == nil {
		return boot, nil
	}
	if cfgFile == defaultBootstrapFile && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}
