package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/audit/storage"
)

func seedAuditRecords(t *testing.T, path string, records ...*audit.Record) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("failed to open audit storage: %v", err)
	}
	defer store.Close()

	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.Time.IsZero() {
			record.Time = time.Now()
		}
		if err := store.Store(context.Background(), record); err != nil {
			t.Fatalf("failed to seed audit record: %v", err)
		}
	}
}

func resetAuditFlags(db string) {
	auditFlags.db = db
	auditFlags.timeRange = ""
	auditFlags.since = 0
	auditFlags.event = ""
	auditFlags.trigger = ""
	auditFlags.outcome = ""
	auditFlags.limit = 100
	auditFlags.offset = 0
	auditFlags.format = "text"
	auditFlags.output = ""
}

func TestAuditList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "audit.db")
	seedAuditRecords(t, db,
		&audit.Record{Event: audit.EventApply, Trigger: audit.TriggerControl, Outcome: audit.OutcomeOK, Modules: 3},
		&audit.Record{Event: audit.EventShutdown, Trigger: audit.TriggerSignal, Outcome: audit.OutcomeOK, Modules: 3},
	)

	resetAuditFlags(db)

	if err := listAuditRecords(nil, []string{}); err != nil {
		t.Errorf("listAuditRecords() returned error: %v", err)
	}
}

func TestAuditListWithFilters(t *testing.T) {
	db := filepath.Join(t.TempDir(), "audit.db")
	seedAuditRecords(t, db,
		&audit.Record{Event: audit.EventApply, Trigger: audit.TriggerControl, Outcome: audit.OutcomeOK},
		&audit.Record{Event: audit.EventApply, Trigger: audit.TriggerControl, Outcome: audit.OutcomeError, Error: "module failed"},
	)

	resetAuditFlags(db)
	auditFlags.event = audit.EventApply
	auditFlags.outcome = audit.OutcomeError
	auditFlags.since = time.Hour

	if err := listAuditRecords(nil, []string{}); err != nil {
		t.Errorf("listAuditRecords() with filters returned error: %v", err)
	}
}

func TestAuditListJSONToFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "audit.db")
	seedAuditRecords(t, db,
		&audit.Record{Event: audit.EventApply, Trigger: audit.TriggerAutostart, Outcome: audit.OutcomeOK},
	)

	out := filepath.Join(dir, "audit.json")
	resetAuditFlags(db)
	auditFlags.format = "json"
	auditFlags.output = out

	if err := listAuditRecords(nil, []string{}); err != nil {
		t.Fatalf("listAuditRecords() returned error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	var result struct {
		TotalRecords int             `json:"total_records"`
		Records      []*audit.Record `json:"records"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.TotalRecords != 1 || len(result.Records) != 1 {
		t.Errorf("got %d records in output, want 1", result.TotalRecords)
	}
	if result.Records[0].Trigger != audit.TriggerAutostart {
		t.Errorf("Trigger = %q, want %q", result.Records[0].Trigger, audit.TriggerAutostart)
	}
}

func TestAuditListBadTimeRange(t *testing.T) {
	resetAuditFlags(filepath.Join(t.TempDir(), "audit.db"))
	auditFlags.timeRange = "yesterday"

	if err := listAuditRecords(nil, []string{}); err == nil {
		t.Error("listAuditRecords() with malformed time range should return error")
	}
}

func TestAuditListSinceAndTimeRangeConflict(t *testing.T) {
	resetAuditFlags(filepath.Join(t.TempDir(), "audit.db"))
	auditFlags.since = time.Hour
	auditFlags.timeRange = "2026-08-24T00:00:00Z/2026-08-25T00:00:00Z"

	if err := listAuditRecords(nil, []string{}); err == nil {
		t.Error("listAuditRecords() with both --since and --time-range should return error")
	}
}
