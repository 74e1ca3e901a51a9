package lifecycle

import (
	"fmt"

	"github.com/shengxinking/tempesta/pkg/cfg"
)

// Module is one configuration-consuming subsystem. The zero value is
// not usable; Name is mandatory and Specs lists the entries the module
// understands. All callbacks are optional.
type Module struct {
	// Name identifies the module in logs and errors. Must be non-empty
	// and unique within a registry.
	Name string

	// Specs is the module's entry table, dispatched on every apply.
	Specs []*cfg.Spec

	// Init runs once at registration. A failure aborts the
	// registration and the module is not added.
	Init func() error

	// Setup runs at the beginning of every apply cycle, before any
	// parsing, typically allocating scratch state the spec handlers
	// write into.
	Setup func() error

	// Start runs after the whole document parsed and validated,
	// bringing the module live on its freshly parsed state.
	Start func() error

	// Stop halts a live module. Teardown cannot fail.
	Stop func()

	// Cleanup releases state allocated by Setup. It runs on every
	// rollback and every shutdown, whether or not Start ran.
	Cleanup func()

	// Exit runs once at unregistration.
	Exit func()
}

// Phase names the lifecycle phase in which a module callback failed.
type Phase string

const (
	PhaseInit  Phase = "init"
	PhaseSetup Phase = "setup"
	PhaseStart Phase = "start"
)

// CycleError reports a module callback failure during registration or
// a configuration cycle.
type CycleError struct {
	Module string
	Phase  Phase
	Err    error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("module %q failed to %s: %v", e.Module, e.Phase, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }

// call invokes an optional fallible callback.
func call(fn func() error) error {
	if fn == nil {
		return nil
	}
	return fn()
}

// tear invokes an optional teardown callback.
func tear(fn func()) {
	if fn != nil {
		fn()
	}
}
