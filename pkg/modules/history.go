package modules

import (
	"fmt"
	"log/slog"

	"github.com/shengxinking/tempesta/pkg/cfg"
	"github.com/shengxinking/tempesta/pkg/history"
	"github.com/shengxinking/tempesta/pkg/lifecycle"
)

// History is the built-in module keeping snapshots of successfully
// applied documents:
//
//	history {
//	    enabled on;
//	    path data/history.db;
//	    keep 50;
//	}
//
// Without the block no snapshots are taken. keep 0 keeps everything.
type History struct {
	hub    *Hub
	logger *slog.Logger
	specs  []*cfg.Spec

	// scratch filled by the spec handlers, reset every apply
	enabled bool
	path    string
	keep    int
}

// NewHistory creates the history built-in installing into hub.
func NewHistory(hub *Hub, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	m := &History{
		hub:    hub,
		logger: logger.With("component", "modules.history"),
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
			Name:       "path",
			Handler:    cfg.SetString,
			Dest:       &m.path,
			Ext:        &cfg.StrSpec{Cap: 4096},
			Default:    "data/history.db",
			HasDefault: true,
		},
		{
			Name:       "keep",
			Handler:    cfg.SetInt,
			Dest:       &m.keep,
			Ext:        &cfg.IntSpec{Range: cfg.Range{Min: 0, Max: 1 << 20}},
			Default:    "50",
			HasDefault: true,
		},
	}
	return m
}

// Module exposes the history block to a registry.
func (m *History) Module() *lifecycle.Module {
	return &lifecycle.Module{
		Name: "history",
		Specs: []*cfg.Spec{{
			Name:      "history",
			Handler:   cfg.ParseChildren,
			Dest:      m.specs,
			AllowNone: true,
		}},
		Setup: m.setup,
		Start: m.start,
	}
}

func (m *History) setup() error {
	m.enabled = false
	m.path = ""
	m.keep = 0
	return nil
}

func (m *History) start() error {
	if !m.enabled {
		m.hub.InstallHistory(nil)
		m.logger.Debug("configuration history disabled")
		return nil
	}

	store, err := history.New(&history.Config{
		Path: m.path,
		Keep: m.keep,
	})
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}

	m.hub.InstallHistory(store)
	m.logger.Info("configuration history up", "path", m.path, "keep", m.keep)
	return nil
}
