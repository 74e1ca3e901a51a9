package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/audit/storage"
	"github.com/shengxinking/tempesta/pkg/cli"
)

var auditFlags struct {
	db        string
	timeRange string
	since     time.Duration
	event     string
	trigger   string
	outcome   string
	limit     int
	offset    int
	format    string
	output    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the apply audit trail",
	Long: `Query apply and shutdown records from the audit database.

Every configuration cycle leaves one record: event, trigger, outcome,
duration and the hash of the applied document. The audit command reads
the SQLite database directly; the daemon does not have to be running.

Examples:
  # Records from the last day
  tempesta audit list --since 24h

  # Failed applies only
  tempesta audit list --event apply --outcome error

  # Export to a JSON file
  tempesta audit list --format json --output audit.json`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit records",
	Long: `List audit records, newest first.

Time Range Format:
  RFC3339 interval: "start/end"
  Example: "2026-08-24T00:00:00Z/2026-08-25T00:00:00Z"

Examples:
  # Query a specific time range
  tempesta audit list --time-range "2026-08-24T00:00:00Z/2026-08-25T00:00:00Z"

  # Shutdowns triggered through the state file
  tempesta audit list --event shutdown --trigger control`,
	RunE: listAuditRecords,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditCmd.PersistentFlags().StringVar(&auditFlags.db, "db", "data/audit.db", "audit database path")
	auditCmd.PersistentFlags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")

	auditListCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditListCmd.Flags().DurationVar(&auditFlags.since, "since", 0, "records newer than this duration ago")
	auditListCmd.Flags().StringVar(&auditFlags.event, "event", "", "filter by event (apply, shutdown)")
	auditListCmd.Flags().StringVar(&auditFlags.trigger, "trigger", "", "filter by trigger (autostart, control, signal, direct)")
	auditListCmd.Flags().StringVar(&auditFlags.outcome, "outcome", "", "filter by outcome (ok, error)")
	auditListCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditListCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditListCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
}

func listAuditRecords(cmd *cobra.Command, args []string) error {
	query, err := buildAuditQuery()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: auditFlags.db})
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("failed to open audit database: %w", err))
	}
	defer store.Close()

	records, err := store.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if auditFlags.output != "" {
		output, err = os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if auditFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(output, map[string]any{
			"total_records": len(records),
			"records":       records,
		})
	}
	return outputAuditText(output, records, query)
}

func buildAuditQuery() (*audit.Query, error) {
	query := &audit.Query{
		Event:   auditFlags.event,
		Trigger: auditFlags.trigger,
		Outcome: auditFlags.outcome,
		Limit:   auditFlags.limit,
		Offset:  auditFlags.offset,
	}

	if auditFlags.timeRange != "" && auditFlags.since > 0 {
		return nil, fmt.Errorf("--time-range and --since cannot be combined")
	}

	if auditFlags.since > 0 {
		start := time.Now().Add(-auditFlags.since)
		query.StartTime = &start
	}

	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	return query, nil
}

func outputAuditText(output *os.File, records []*audit.Record, query *audit.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Time: %s\n", record.Time.Format(time.RFC3339))
		fmt.Fprintf(output, "Event: %s (trigger: %s)\n", record.Event, record.Trigger)
		fmt.Fprintf(output, "Outcome: %s\n", record.Outcome)
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", record.Error)
		}
		if record.ConfigHash != "" {
			fmt.Fprintf(output, "Config Hash: %s\n", record.ConfigHash)
		}
		if record.Source != "" {
			fmt.Fprintf(output, "Source: %s\n", record.Source)
		}
		fmt.Fprintf(output, "Modules: %d\n", record.Modules)
		fmt.Fprintf(output, "Duration: %s\n", record.Duration)

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}
