package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shengxinking/tempesta/pkg/audit"
	"github.com/shengxinking/tempesta/pkg/audit/recorder"
	"github.com/shengxinking/tempesta/pkg/audit/retention"
	"github.com/shengxinking/tempesta/pkg/audit/storage"
	"github.com/shengxinking/tempesta/pkg/cfg"
	"github.com/shengxinking/tempesta/pkg/lifecycle"
)

// Audit storage backends.
const (
	backendMemory = iota
	backendSQLite
)

var auditBackends = []cfg.EnumMapping{
	{Name: "memory", Value: backendMemory},
	{Name: "sqlite", Value: backendSQLite},
}

func backendName(v int) string {
	for _, m := range auditBackends {
		if m.Value == v {
			return m.Name
		}
	}
	return "unknown"
}

// Audit is the built-in module owning the audit trail:
//
//	audit {
//	    enabled on;
//	    backend sqlite;
//	    path data/audit.db;
//	    buffer 256;
//	    retention_days 90;
//	    prune_schedule "0 3 * * *";
//	    max_records 0;
//	}
//
// Without the block no trail is kept. Starting the module installs a
// fresh recorder, storage and pruner into the hub; the hub keeps them
// past the module's stop so the shutdown itself still gets recorded.
type Audit struct {
	hub    *Hub
	logger *slog.Logger
	specs  []*cfg.Spec

	// scratch filled by the spec handlers, reset every apply
	enabled    bool
	backend    int
	path       string
	buffer     int
	retention  int
	schedule   string
	maxRecords int
}

// NewAudit creates the audit built-in installing into hub.
func NewAudit(hub *Hub, logger *slog.Logger) *Audit {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Audit{
		hub:    hub,
		logger: logger.With("component", "modules.audit"),
	}
	m.specs = []*cfg.Spec{
		{
			Name:       "enabled",
			Handler:    cfg.SetBool,
			Dest:       &m.enabled,
			Default:    "on",
			HasDefault: true,
		},
		{
			Name:       "backend",
			Handler:    m.setBackend,
			Default:    "memory",
			HasDefault: true,
		},
		{
			Name:       "path",
			Handler:    cfg.SetString,
			Dest:       &m.path,
			Ext:        &cfg.StrSpec{Cap: 4096},
			Default:    "data/audit.db",
			HasDefault: true,
		},
		{
			Name:       "buffer",
			Handler:    cfg.SetInt,
			Dest:       &m.buffer,
			Ext:        &cfg.IntSpec{Range: cfg.Range{Min: 1, Max: 1 << 16}},
			Default:    "256",
			HasDefault: true,
		},
		{
			Name:       "retention_days",
			Handler:    cfg.SetInt,
			Dest:       &m.retention,
			Ext:        &cfg.IntSpec{Range: cfg.Range{Min: 0, Max: 3650}},
			Default:    "90",
			HasDefault: true,
		},
		{
			Name:       "prune_schedule",
			Handler:    cfg.SetString,
			Dest:       &m.schedule,
			Default:    `"0 3 * * *"`,
			HasDefault: true,
		},
		{
			Name:       "max_records",
			Handler:    cfg.SetInt,
			Dest:       &m.maxRecords,
			Ext:        &cfg.IntSpec{Range: cfg.Range{Min: 0, Max: 1 << 30}},
			Default:    "0",
			HasDefault: true,
		},
	}
	return m
}

// Module exposes the audit block to a registry.
func (m *Audit) Module() *lifecycle.Module {
	return &lifecycle.Module{
		Name: "audit",
		Specs: []*cfg.Spec{{
			Name:      "audit",
			Handler:   cfg.ParseChildren,
			Dest:      m.specs,
			AllowNone: true,
		}},
		Setup: m.setup,
		Start: m.start,
	}
}

// setBackend maps the backend name onto the storage constant.
func (m *Audit) setBackend(spec *cfg.Spec, e *cfg.Entry) error {
	if err := cfg.CheckSingleValue(e); err != nil {
		return err
	}
	return cfg.MapEnum(auditBackends, e.Vals[0], &m.backend)
}

func (m *Audit) setup() error {
	m.enabled = false
	m.backend = backendMemory
	m.path = ""
	m.buffer = 0
	m.retention = 0
	m.schedule = ""
	m.maxRecords = 0
	return nil
}

func (m *Audit) start() error {
	if !m.enabled {
		m.hub.InstallAudit(nil, nil, nil)
		m.logger.Debug("audit trail disabled")
		return nil
	}

	var store audit.Storage
	switch m.backend {
	case backendSQLite:
		s, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: m.path})
		if err != nil {
			return fmt.Errorf("failed to open audit storage: %w", err)
		}
		store = s
	default:
		store = storage.NewMemoryStorage()
	}

	rec := recorder.NewRecorder(store, &recorder.Config{
		Enabled: true,
		Buffer:  m.buffer,
	})

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: m.retention,
		PruneSchedule: m.schedule,
		MaxRecords:    int64(m.maxRecords),
	})
	if err := pruner.Start(context.Background()); err != nil {
		rec.Close()
		store.Close()
		return fmt.Errorf("failed to start audit pruner: %w", err)
	}

	m.hub.InstallAudit(rec, store, pruner)
	m.logger.Info("audit trail up",
		"backend", backendName(m.backend),
		"retention_days", m.retention,
		"max_records", m.maxRecords)
	return nil
}
