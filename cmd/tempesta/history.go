package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shengxinking/tempesta/pkg/cli"
	"github.com/shengxinking/tempesta/pkg/history"
)

var historyFlags struct {
	db     string
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect accepted configuration snapshots",
	Long: `List and show configuration snapshots.

Every successful apply stores the accepted document in the snapshot
database. The history command reads that database directly; the daemon
does not have to be running.

Examples:
  # List recent snapshots
  tempesta history list

  # Show a snapshot's document by ID prefix
  tempesta history show 3f2a

  # Machine-readable output
  tempesta history list --format json`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE:  listSnapshots,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one snapshot's document",
	Long: `Show a snapshot, including the full document text.

The ID may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: showSnapshot,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd)

	historyCmd.PersistentFlags().StringVar(&historyFlags.db, "db", "data/history.db", "snapshot database path")
	historyCmd.PersistentFlags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "max snapshots to list")
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	store, err := history.New(&history.Config{Path: historyFlags.db})
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	snapshots, err := store.List(context.Background(), historyFlags.limit)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if historyFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, map[string]any{
			"total_snapshots": len(snapshots),
			"snapshots":       snapshots,
		})
	}

	fmt.Printf("Total snapshots: %d\n", len(snapshots))
	fmt.Println()

	if len(snapshots) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}

	for i, snapshot := range snapshots {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("ID: %s\n", snapshot.ID)
		fmt.Printf("Time: %s\n", snapshot.Time.Format(time.RFC3339))
		fmt.Printf("Hash: %s\n", snapshot.Hash)
		if snapshot.Source != "" {
			fmt.Printf("Source: %s\n", snapshot.Source)
		}
	}
	return nil
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	store, err := history.New(&history.Config{Path: historyFlags.db})
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer store.Close()

	snapshot, err := store.Get(context.Background(), args[0])
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if historyFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, snapshot)
	}

	fmt.Printf("ID: %s\n", snapshot.ID)
	fmt.Printf("Time: %s\n", snapshot.Time.Format(time.RFC3339))
	fmt.Printf("Hash: %s\n", snapshot.Hash)
	if snapshot.Source != "" {
		fmt.Printf("Source: %s\n", snapshot.Source)
	}
	fmt.Println()
	fmt.Print(snapshot.Text)
	return nil
}
