package modules

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/audit/recorder"
	"github.com/shengxinking/tempesta/pkg/audit/retention"
	"github.com/shengxinking/tempesta/pkg/control"
	"github.com/shengxinking/tempesta/pkg/history"
)

// Hub connects the built-in modules to the control plane. Modules
// install their live components when they start; the controller's
// cycle observations find whatever is installed at that moment.
//
// Components deliberately outlive the configuration that created
// them: a shutdown or a failed apply still deserves an audit record,
// and the only sink able to take it is the one from the last
// successful apply. Installing replaces and closes the previous
// component; Close releases the last ones at process exit.
type Hub struct {
	logger *slog.Logger

	mu       sync.Mutex
	recorder *recorder.Recorder
	storage  audit.Storage
	pruner   *retention.Pruner
	history  *history.Store
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger.With("component", "modules.hub")}
}

// InstallAudit replaces the audit stack. The previous one, if any, is
// drained and closed. All-nil arguments uninstall auditing.
func (h *Hub) InstallAudit(rec *recorder.Recorder, store audit.Storage, pruner *retention.Pruner) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeAuditLocked()
	h.recorder = rec
	h.storage = store
	h.pruner = pruner
}

// InstallHistory replaces the snapshot store. The previous one, if
// any, is closed. A nil store uninstalls history.
func (h *Hub) InstallHistory(store *history.Store) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeHistoryLocked()
	h.history = store
}

// Observe is the control.CycleFunc end of the hub: it records the
// finished transition in the audit trail and snapshots the document
// of a successful apply.
func (h *Hub) Observe(cycle control.Cycle) {
	h.mu.Lock()
	rec, hist := h.recorder, h.history
	h.mu.Unlock()

	if rec != nil {
		rc := &recorder.Cycle{
			Trigger:  cycle.Trigger,
			Source:   cycle.Source,
			Config:   cycle.Text,
			Modules:  cycle.Modules,
			Duration: cycle.Duration,
			Err:      cycle.Err,
		}
		var err error
		switch cycle.Event {
		case audit.EventApply:
			err = rec.RecordApply(rc)
		case audit.EventShutdown:
			err = rec.RecordShutdown(rc)
		}
		if err != nil {
			h.logger.Warn("failed to record transition",
				"event", cycle.Event, "error", err)
		}
	}

	if hist != nil && cycle.Event == audit.EventApply && cycle.Err == nil {
		if _, err := hist.Save(context.Background(), cycle.Source, cycle.Text); err != nil {
			h.logger.Warn("failed to snapshot configuration", "error", err)
		}
	}
}

// AuditReady probes the installed audit storage. No storage installed
// means auditing is off, which is healthy.
func (h *Hub) AuditReady(ctx context.Context) error {
	h.mu.Lock()
	store := h.storage
	h.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Ping(ctx)
}

// HistoryReady probes the installed snapshot store.
func (h *Hub) HistoryReady(ctx context.Context) error {
	h.mu.Lock()
	store := h.history
	h.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Ping(ctx)
}

// Close releases whatever is still installed. Called once at process
// exit, after the final shutdown cycle was observed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeAuditLocked()
	h.closeHistoryLocked()
}

func (h *Hub) closeAuditLocked() {
	if h.pruner != nil {
		h.pruner.Stop()
		h.pruner = nil
	}
	if h.recorder != nil {
		if err := h.recorder.Close(); err != nil {
			h.logger.Warn("failed to close audit recorder", "error", err)
		}
		h.recorder = nil
	}
	if h.storage != nil {
		if err := h.storage.Close(); err != nil {
			h.logger.Warn("failed to close audit storage", "error", err)
		}
		h.storage = nil
	}
}

func (h *Hub) closeHistoryLocked() {
	if h.history != nil {
		if err := h.history.Close(); err != nil {
			h.logger.Warn("failed to close snapshot store", "error", err)
		}
		h.history = nil
	}
}
