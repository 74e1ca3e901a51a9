package lifecycle

import (
	"fmt"
	"io"
	"time"

	"github.com/shengxinking/tempesta/pkg/cfg"
)

// Apply parses text and brings every registered module live on it, all
// or nothing. On any failure every module is rolled back to the
// stopped state and the error describes the first thing that went
// wrong. Applying on top of a running configuration is an error; stop
// it first.
func (r *Registry) Apply(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("cannot apply: %w", ErrRunning)
	}

	begin := time.Now()
	err := r.applyLocked(text)
	if err != nil {
		r.metrics.ObserveApply("failure", time.Since(begin))
		r.logger.Error("configuration apply failed", "error", err)
		return err
	}
	r.metrics.ObserveApply("success", time.Since(begin))
	r.logger.Info("configuration applied",
		"modules", len(r.modules),
		"duration", time.Since(begin))
	return nil
}

func (r *Registry) applyLocked(text string) error {
	for i, m := range r.modules {
		if err := call(m.Setup); err != nil {
			r.logger.Error("module setup failed, rolling back", "module", m.Name, "error", err)
			for j := i - 1; j >= 0; j-- {
				tear(r.modules[j].Cleanup)
			}
			return &CycleError{Module: m.Name, Phase: PhaseSetup, Err: err}
		}
	}

	if err := r.parseLocked(text); err != nil {
		r.metrics.IncParseErrors()
		for j := len(r.modules) - 1; j >= 0; j-- {
			tear(r.modules[j].Cleanup)
		}
		return err
	}

	for i, m := range r.modules {
		if err := call(m.Start); err != nil {
			r.logger.Error("module start failed, rolling back", "module", m.Name, "error", err)
			for j := i - 1; j >= 0; j-- {
				tear(r.modules[j].Stop)
			}
			// Cleanup runs for every module, the failing and the
			// never-started ones included: their setup state exists
			// and must be released.
			for j := len(r.modules) - 1; j >= 0; j-- {
				tear(r.modules[j].Cleanup)
			}
			return &CycleError{Module: m.Name, Phase: PhaseStart, Err: err}
		}
	}

	r.started = true
	return nil
}

// parseLocked runs the single dispatch pass over the union of all
// modules' spec tables. Entries match across modules in registration
// order; each module keeps its own cardinality bookkeeping.
func (r *Registry) parseLocked(text string) error {
	for _, m := range r.modules {
		cfg.StartHandling(m.Specs)
	}

	entries := 0
	p := cfg.NewParser(text)
	for {
		e, err := p.NextEntry()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		spec, owner := r.findSpec(e.Name)
		if spec == nil {
			return e.Annotate(&cfg.Error{
				Kind:       cfg.KindValidation,
				Message:    fmt.Sprintf("unknown entry '%s'", e.Name),
				Offset:     -1,
				Suggestion: cfg.SuggestName(e.Name, r.specNames()),
			})
		}
		if err := cfg.HandleEntry(spec, e); err != nil {
			return fmt.Errorf("module %q: %w", owner.Name, err)
		}
		entries++
	}

	for _, m := range r.modules {
		if err := cfg.FinishHandling(m.Specs); err != nil {
			return fmt.Errorf("module %q: %w", m.Name, err)
		}
	}

	r.metrics.AddEntriesParsed(entries)
	return nil
}

func (r *Registry) findSpec(name string) (*cfg.Spec, *Module) {
	for _, m := range r.modules {
		if s := cfg.Find(m.Specs, name); s != nil {
			return s, m
		}
	}
	return nil, nil
}

// Shutdown stops a live configuration: every module's Stop in reverse
// registration order, then every Cleanup in reverse. A stopped
// registry is left alone.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdownLocked()
}

func (r *Registry) shutdownLocked() {
	if !r.started {
		return
	}
	r.logger.Info("stopping configuration", "modules", len(r.modules))
	for i := len(r.modules) - 1; i >= 0; i-- {
		tear(r.modules[i].Stop)
	}
	for i := len(r.modules) - 1; i >= 0; i-- {
		tear(r.modules[i].Cleanup)
	}
	r.started = false
	r.metrics.ObserveShutdown()
}
