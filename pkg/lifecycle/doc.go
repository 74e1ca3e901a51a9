// Package lifecycle orchestrates configuration-consuming modules
// through the start/stop state machine.
//
// # Model
//
// A Module bundles a name, the cfg spec table describing the entries
// it consumes, and up to six callbacks: Init, Setup and Start may
// fail; Stop, Cleanup and Exit are teardown and may not. Any callback
// may be nil.
//
// A Registry owns an ordered module list. Registration order is
// meaningful: setup and start walk it forward, every teardown walks it
// in reverse, so a module may rely on everything registered before it.
//
// # The apply cycle
//
// Apply(text) drives one all-or-nothing transition from stopped to
// running:
//
//  1. Setup on every module, in order. A failure rolls back the
//     modules already set up (Cleanup, reverse order) and aborts.
//  2. One parse pass over text. Entries are matched across all
//     modules' spec tables; unknown names fail the pass. Defaults and
//     required-entry checks run per module afterwards. Any failure
//     cleans up all modules in reverse.
//  3. Start on every module, in order. A failure stops the already
//     started modules in reverse, then cleans up all modules in
//     reverse, including the failing and the never-started ones, so
//     state allocated in setup is always released.
//
// Shutdown() runs two full reverse passes, all Stops then all
// Cleanups, mirroring the apply. Close() shuts down if needed and then
// unregisters everything in reverse.
//
// There is no partial reconfiguration: changing a live configuration
// is Shutdown followed by Apply.
//
// # Usage
//
//	reg := lifecycle.New(lifecycle.Config{})
//	err := reg.Register(&lifecycle.Module{
//	    Name:  "cache",
//	    Specs: cacheSpecs,
//	    Start: cacheStart,
//	    Stop:  cacheStop,
//	})
//	...
//	if err := reg.Apply(text); err != nil {
//	    // nothing is running; the error says why
//	}
//
// # Concurrency
//
// All registry operations serialize on one mutex; Apply and Shutdown
// are mutually exclusive. Module callbacks run synchronously on the
// calling goroutine and must not call back into the registry.
package lifecycle
