package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/cfg"
	"github.com/shengxinking/tempesta/pkg/cli"
	"github.com/shengxinking/tempesta/pkg/config"
	"github.com/shengxinking/tempesta/pkg/control"
	"github.com/shengxinking/tempesta/pkg/lifecycle"
	"github.com/shengxinking/tempesta/pkg/modules"
	"github.com/shengxinking/tempesta/pkg/source"
	"github.com/shengxinking/tempesta/pkg/telemetry/health"
	"github.com/shengxinking/tempesta/pkg/telemetry/logging"
	"github.com/shengxinking/tempesta/pkg/telemetry/metrics"
)

var runFlags struct {
	logLevel  string
	dryRun    bool
	autostart bool
	profile   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Tempesta configuration daemon",
	Long: `Start the daemon that owns the configuration lifecycle.

The daemon watches the control state file and applies or shuts down
the configuration when "start" or "stop" is written into it. The
document itself comes from the configured source, a plain file or a
git repository.

Examples:
  # Start with the default bootstrap config
  tempesta run

  # Start with a custom bootstrap config
  tempesta run --config /etc/tempesta/tempesta.yaml

  # Apply the configuration immediately at boot
  tempesta run --autostart

  # Validate the bootstrap config and the document, then exit
  tempesta run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate configuration without starting the daemon")
	runCmd.Flags().BoolVar(&runFlags.autostart, "autostart", false, "apply the configuration at boot")
	runCmd.Flags().StringVar(&runFlags.profile, "profile", "", "write a pprof profile (cpu, mem)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load bootstrap configuration
	boot, err := loadBootstrap()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load bootstrap config: %v", err))
	}

	// Apply flag overrides
	if runFlags.logLevel != "" {
		boot.Logging.Level = runFlags.logLevel
	}
	if verbose {
		boot.Logging.Level = "debug"
	}
	if runFlags.autostart {
		boot.Control.Autostart = true
	}

	logger, err := logging.New(logging.Config{
		Level:     boot.Logging.Level,
		Format:    boot.Logging.Format,
		AddSource: boot.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}
	slog.SetDefault(logger)

	src, err := source.New(&boot.Source, logger)
	if err != nil {
		return cli.NewConfigError("source", err.Error())
	}

	if runFlags.dryRun {
		return dryRunCheck(src)
	}

	if runFlags.profile != "" {
		prof, err := startProfile(runFlags.profile)
		if err != nil {
			return cli.NewConfigError("profile", err.Error())
		}
		defer prof.Stop()
	}

	// Print startup banner
	printBanner(boot)

	// Telemetry shared by the registry and the built-in modules
	slog.Info("initializing telemetry")
	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector("tempesta", promRegistry)
	checker := health.New(2 * time.Second)

	hub := modules.NewHub(logger)
	defer hub.Close()

	registry := lifecycle.New(lifecycle.Config{Logger: logger, Metrics: collector})
	defer registry.Close()

	build := modules.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}
	builtins := []*lifecycle.Module{
		modules.NewTelemetry(collector, checker, build, logger).Module(),
		modules.NewAudit(hub, logger).Module(),
		modules.NewHistory(hub, logger).Module(),
	}
	for _, m := range builtins {
		if err := registry.Register(m); err != nil {
			return cli.NewCommandError("run", err)
		}
	}
	checker.Register("audit", hub.AuditReady)
	checker.Register("history", hub.HistoryReady)

	fmt.Printf("✓ Modules registered (%d modules)\n", len(registry.Modules()))

	ctrl, err := control.New(control.Options{
		StateFile: boot.Control.StateFile,
		Debounce:  boot.Control.Debounce,
		Source:    src,
		Registry:  registry,
		Metrics:   collector,
		Logger:    logger,
		OnCycle:   hub.Observe,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	if boot.Control.Autostart {
		slog.Info("autostart enabled, applying configuration")
		if err := ctrl.Start(ctx, audit.TriggerAutostart); err != nil {
			slog.Error("autostart failed", "error", err)
		} else {
			fmt.Println("✓ Configuration applied")
		}
	}

	// Watch the state file in the background
	errChan := make(chan error, 1)
	go func() {
		errChan <- ctrl.Run(ctx)
	}()

	fmt.Println()
	fmt.Printf("✓ Watching state file: %s\n", boot.Control.StateFile)
	fmt.Printf("✓ Configuration source: %s\n", src.Describe())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for a shutdown signal or a watcher error
	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	case <-ctx.Done():
		fmt.Println("\nReceived signal, shutting down gracefully...")
		stop()
		<-errChan

		if err := ctrl.Stop(audit.TriggerSignal); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Daemon stopped")
		return nil
	}
}

// dryRunCheck loads the document from the configured source and parses
// it structurally, without touching any module.
func dryRunCheck(src source.Source) error {
	text, err := src.Load(context.Background())
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load configuration: %w", err))
	}
	if err := cfg.CheckDocument(text); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Configuration valid")
	return nil
}

// startProfile begins pprof profiling in the current directory. The
// daemon handles SIGINT/SIGTERM itself, so the package's own shutdown
// hook is disabled.
func startProfile(mode string) (interface{ Stop() }, error) {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (expected cpu or mem)", mode)
	}
}

func printBanner(boot *config.Config) {
	fmt.Printf("Tempesta %s\n", Version)
	fmt.Printf("Bootstrap configuration: %s\n", cfgFile)
	fmt.Println("✓ Bootstrap configuration loaded")

	slog.Debug("configuration source",
		"type", boot.Source.Type,
		"path", boot.Source.Path,
	)
	slog.Debug("control channel",
		"state_file", boot.Control.StateFile,
		"autostart", boot.Control.Autostart,
		"debounce", boot.Control.Debounce,
	)
}
