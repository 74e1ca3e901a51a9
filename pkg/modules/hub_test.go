package modules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/audit/recorder"
	"github.com/shengxinking/tempesta/pkg/audit/storage"
	"github.com/shengxinking/tempesta/pkg/control"
	"github.com/shengxinking/tempesta/pkg/history"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitRecords polls the storage until it holds want records. The
// recorder writes asynchronously, so tests cannot assert right after
// Observe.
func waitRecords(t *testing.T, store audit.Storage, want int64) []*audit.Record {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := store.Count(ctx, &audit.Query{})
		if err == nil && n == want {
			records, err := store.Query(ctx, &audit.Query{})
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			return records
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("storage never reached %d records", want)
	return nil
}

func newAuditStack(t *testing.T) (*recorder.Recorder, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	rec := recorder.NewRecorder(store, &recorder.Config{Enabled: true, Buffer: 16})
	return rec, store
}

func applyCycle(err error) control.Cycle {
	return control.Cycle{
		Event:    audit.EventApply,
		Trigger:  audit.TriggerControl,
		Source:   "memory",
		Text:     "listen 80;\n",
		Modules:  3,
		Duration: 40 * time.Millisecond,
		Err:      err,
	}
}

func TestHub_ObserveRecordsApply(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	rec, store := newAuditStack(t)
	hub.InstallAudit(rec, store, nil)

	hub.Observe(applyCycle(nil))

	records := waitRecords(t, store, 1)
	r := records[0]
	if r.Event != audit.EventApply {
		t.Errorf("event = %q, want %q", r.Event, audit.EventApply)
	}
	if r.Trigger != audit.TriggerControl {
		t.Errorf("trigger = %q, want %q", r.Trigger, audit.TriggerControl)
	}
	if r.Outcome != audit.OutcomeOK {
		t.Errorf("outcome = %q, want %q", r.Outcome, audit.OutcomeOK)
	}
	if r.ConfigHash == "" {
		t.Error("config hash is empty for an apply with a document")
	}
	if r.Modules != 3 {
		t.Errorf("modules = %d, want 3", r.Modules)
	}
}

func TestHub_ObserveRecordsFailure(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	rec, store := newAuditStack(t)
	hub.InstallAudit(rec, store, nil)

	hub.Observe(applyCycle(errors.New("module refused to start")))

	records := waitRecords(t, store, 1)
	if records[0].Outcome != audit.OutcomeError {
		t.Errorf("outcome = %q, want %q", records[0].Outcome, audit.OutcomeError)
	}
	if records[0].Error == "" {
		t.Error("error text is empty for a failed apply")
	}
}

func TestHub_ObserveRecordsShutdown(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	rec, store := newAuditStack(t)
	hub.InstallAudit(rec, store, nil)

	hub.Observe(control.Cycle{
		Event:   audit.EventShutdown,
		Trigger: audit.TriggerSignal,
		Source:  "memory",
		Modules: 3,
	})

	records := waitRecords(t, store, 1)
	if records[0].Event != audit.EventShutdown {
		t.Errorf("event = %q, want %q", records[0].Event, audit.EventShutdown)
	}
	if records[0].ConfigHash != "" {
		t.Errorf("config hash = %q, want empty for a shutdown", records[0].ConfigHash)
	}
}

func TestHub_ObserveSnapshots(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	store, err := history.New(&history.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
	})
	if err != nil {
		t.Fatalf("history.New() failed: %v", err)
	}
	hub.InstallHistory(store)

	ctx := context.Background()

	// Only a successful apply is worth a snapshot.
	hub.Observe(applyCycle(errors.New("broken")))
	hub.Observe(control.Cycle{Event: audit.EventShutdown, Trigger: audit.TriggerSignal})
	if latest, err := store.Latest(ctx); err != nil || latest != nil {
		t.Fatalf("Latest() = (%v, %v), want (nil, nil)", latest, err)
	}

	hub.Observe(applyCycle(nil))
	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if latest == nil {
		t.Fatal("no snapshot after a successful apply")
	}
	if latest.Text != "listen 80;\n" {
		t.Errorf("snapshot text = %q, want the applied document", latest.Text)
	}
	if latest.Source != "memory" {
		t.Errorf("snapshot source = %q, want %q", latest.Source, "memory")
	}
}

func TestHub_InstallReplaces(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	recA, storeA := newAuditStack(t)
	hub.InstallAudit(recA, storeA, nil)
	hub.Observe(applyCycle(nil))
	waitRecords(t, storeA, 1)

	recB, storeB := newAuditStack(t)
	hub.InstallAudit(recB, storeB, nil)

	// The old stack was drained and closed.
	if storeA.Size() != 0 {
		t.Errorf("old storage still holds %d records after replacement", storeA.Size())
	}

	hub.Observe(applyCycle(nil))
	waitRecords(t, storeB, 1)
}

func TestHub_ObserveWithNothingInstalled(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	hub.Observe(applyCycle(nil)) // must not panic
}

func TestHub_UninstallStopsRecording(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	rec, store := newAuditStack(t)
	hub.InstallAudit(rec, store, nil)
	hub.InstallAudit(nil, nil, nil)

	hub.Observe(applyCycle(nil))
	time.Sleep(50 * time.Millisecond)
	if store.Size() != 0 {
		t.Errorf("uninstalled storage holds %d records", store.Size())
	}
}

func TestHub_ReadyProbes(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()
	ctx := context.Background()

	// Nothing installed means the features are off, not broken.
	if err := hub.AuditReady(ctx); err != nil {
		t.Errorf("AuditReady() = %v, want nil with no storage", err)
	}
	if err := hub.HistoryReady(ctx); err != nil {
		t.Errorf("HistoryReady() = %v, want nil with no store", err)
	}

	rec, store := newAuditStack(t)
	hub.InstallAudit(rec, store, nil)
	if err := hub.AuditReady(ctx); err != nil {
		t.Errorf("AuditReady() = %v, want nil with live storage", err)
	}

	hist, err := history.New(&history.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
	})
	if err != nil {
		t.Fatalf("history.New() failed: %v", err)
	}
	hub.InstallHistory(hist)
	if err := hub.HistoryReady(ctx); err != nil {
		t.Errorf("HistoryReady() = %v, want nil with live store", err)
	}
}

func TestHub_CloseTwice(t *testing.T) {
	hub := NewHub(testLogger())

	rec, store := newAuditStack(t)
	hub.InstallAudit(rec, store, nil)

	hub.Close()
	hub.Close() // idempotent
}
