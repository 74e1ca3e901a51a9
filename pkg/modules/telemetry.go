package modules

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shengxinking/tempesta/pkg/cfg"
	"github.com/shengxinking/tempesta/pkg/lifecycle"
	"github.com/shengxinking/tempesta/pkg/telemetry/health"
	"github.com/shengxinking/tempesta/pkg/telemetry/metrics"
)

// Telemetry endpoint defaults.
const (
	DefaultTelemetryListen = "127.0.0.1:9090"
	DefaultTelemetryPath   = "/metrics"
)

// BuildInfo identifies the binary on the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Telemetry is the built-in module serving the metrics and probe
// endpoints while a configuration is live:
//
//	telemetry {
//	    metrics on;
//	    listen 127.0.0.1:9090;
//	    path /metrics;
//	}
//
// Without the block the endpoint stays down. Within the block every
// entry is optional; the defaults above apply.
type Telemetry struct {
	collector *metrics.Collector
	checker   *health.Checker
	build     BuildInfo
	logger    *slog.Logger
	specs     []*cfg.Spec

	// scratch filled by the spec handlers, reset every apply
	enabled bool
	listen  string
	path    string

	mu   sync.Mutex
	srv  *http.Server
	addr string
}

// NewTelemetry creates the telemetry built-in around the process-wide
// collector and health checker.
func NewTelemetry(collector *metrics.Collector, checker *health.Checker, build BuildInfo, logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Telemetry{
		collector: collector,
		checker:   checker,
		build:     build,
		logger:    logger.With("component", "modules.telemetry"),
	}
	m.specs = []*cfg.Spec{
		{
			Name:       "metrics",
			Handler:    cfg.SetBool,
			Dest:       &m.enabled,
			Default:    "on",
			HasDefault: true,
		},
		{
			Name:       "listen",
			Handler:    cfg.SetString,
			Dest:       &m.listen,
			Ext:        &cfg.StrSpec{Cap: 256},
			Default:    DefaultTelemetryListen,
			HasDefault: true,
		},
		{
			Name:       "path",
			Handler:    cfg.SetString,
			Dest:       &m.path,
			Ext:        &cfg.StrSpec{Cap: 256},
			Default:    DefaultTelemetryPath,
			HasDefault: true,
		},
	}
	return m
}

// Module exposes the telemetry block to a registry.
func (m *Telemetry) Module() *lifecycle.Module {
	return &lifecycle.Module{
		Name: "telemetry",
		Specs: []*cfg.Spec{{
			Name:      "telemetry",
			Handler:   cfg.ParseChildren,
			Dest:      m.specs,
			AllowNone: true,
		}},
		Setup: m.setup,
		Start: m.start,
		Stop:  m.stop,
	}
}

func (m *Telemetry) setup() error {
	m.enabled = false
	m.listen = ""
	m.path = ""
	return nil
}

func (m *Telemetry) start() error {
	if !m.enabled || m.listen == "" {
		m.logger.Debug("telemetry endpoint disabled")
		return nil
	}
	if !strings.HasPrefix(m.path, "/") {
		return fmt.Errorf("metrics path %q must begin with '/'", m.path)
	}
	// The probe endpoints share the mux; a colliding scrape path would
	// panic inside net/http.
	switch m.path {
	case "/health", "/ready", "/version":
		return fmt.Errorf("metrics path %q collides with a probe endpoint", m.path)
	}

	mux := http.NewServeMux()
	mux.Handle(m.path, m.collector.Handler())
	health.Mount(mux, m.checker, m.build.Version, m.build.Commit, m.build.BuildTime)

	ln, err := net.Listen("tcp", m.listen)
	if err != nil {
		return fmt.Errorf("failed to bind telemetry endpoint: %w", err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	m.mu.Lock()
	m.srv = srv
	m.addr = ln.Addr().String()
	m.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			m.logger.Error("telemetry endpoint failed", "error", err)
		}
	}()

	m.logger.Info("telemetry endpoint up", "listen", m.Addr(), "path", m.path)
	return nil
}

func (m *Telemetry) stop() {
	m.mu.Lock()
	srv := m.srv
	m.srv = nil
	m.addr = ""
	m.mu.Unlock()

	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		m.logger.Warn("telemetry endpoint shutdown failed", "error", err)
	}
}

// Addr reports the bound address while the endpoint is up, which with
// a ":0" listen value is the only way to learn the port.
func (m *Telemetry) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}
