package lifecycle

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shengxinking/tempesta/pkg/cfg"
	"github.com/shengxinking/tempesta/pkg/telemetry/metrics"
)

// ErrRunning is returned when an operation needs the configuration
// stopped but it is live: registering a module mid-flight, or applying
// on top of a running configuration.
var ErrRunning = errors.New("configuration is running")

// Config configures a Registry.
type Config struct {
	// Logger falls back to slog.Default(). The registry logs with
	// component "lifecycle".
	Logger *slog.Logger

	// Metrics optionally receives counters and timings for
	// configuration cycles. Nil is fine.
	Metrics *metrics.Collector
}

// Registry owns an ordered set of modules and drives them through the
// configuration lifecycle. Construct one with New; registries are not
// shared state and a process may own several independent ones.
type Registry struct {
	mu      sync.Mutex
	modules []*Module
	started bool

	logger  *slog.Logger
	metrics *metrics.Collector
}

// New returns an empty, stopped Registry.
func New(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger.With("component", "lifecycle"),
		metrics: cfg.Metrics,
	}
}

// Register adds a module and runs its Init callback. A nil module or
// an empty name is a programmer error and panics. Registration fails
// if the configuration is running, if the name is taken, if any spec
// name collides with one already registered (entry names are global
// across the whole module set), or if Init fails.
func (r *Registry) Register(m *Module) error {
	if m == nil || m.Name == "" {
		panic("lifecycle: Register needs a module with a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("cannot register module %q: %w", m.Name, ErrRunning)
	}

	taken := make(map[string]string) // spec name -> owning module
	for _, existing := range r.modules {
		if existing.Name == m.Name {
			return fmt.Errorf("module %q is already registered", m.Name)
		}
		for _, s := range existing.Specs {
			taken[s.Name] = existing.Name
		}
	}
	for _, s := range m.Specs {
		if owner, ok := taken[s.Name]; ok {
			return fmt.Errorf("module %q: entry %q is already claimed by module %q", m.Name, s.Name, owner)
		}
		taken[s.Name] = m.Name
	}

	if err := call(m.Init); err != nil {
		return &CycleError{Module: m.Name, Phase: PhaseInit, Err: err}
	}

	r.modules = append(r.modules, m)
	r.metrics.SetModulesRegistered(len(r.modules))
	r.logger.Debug("module registered", "module", m.Name, "specs", len(m.Specs))
	return nil
}

// Unregister removes a module and runs its Exit callback. Removing a
// module from a running configuration is almost certainly a bug in the
// caller, so it is logged loudly but still performed.
func (r *Registry) Unregister(m *Module) {
	if m == nil {
		panic("lifecycle: Unregister needs a module")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(m)
}

func (r *Registry) unregisterLocked(m *Module) {
	if r.started {
		r.logger.Warn("unregistering a module while the configuration is running", "module", m.Name)
	}
	for i, mod := range r.modules {
		if mod == m {
			r.modules = append(r.modules[:i], r.modules[i+1:]...)
			break
		}
	}
	tear(m.Exit)
	r.metrics.SetModulesRegistered(len(r.modules))
	r.logger.Debug("module unregistered", "module", m.Name)
}

// Started reports whether a configuration is live.
func (r *Registry) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Modules returns the registered module names in registration order.
func (r *Registry) Modules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name
	}
	return names
}

// Close shuts the configuration down if it is running, then
// unregisters every module in reverse registration order. The registry
// is empty and reusable afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shutdownLocked()
	for i := len(r.modules) - 1; i >= 0; i-- {
		r.unregisterLocked(r.modules[i])
	}
}

// specNames returns every registered spec name, for "did you mean"
// suggestions on unknown entries.
func (r *Registry) specNames() []string {
	var names []string
	for _, m := range r.modules {
		names = append(names, cfg.Names(m.Specs)...)
	}
	return names
}
