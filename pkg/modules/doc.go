// Package modules holds the built-in modules every tempesta daemon
// registers: telemetry (metrics and probe endpoints), audit (the
// transition trail) and history (document snapshots).
//
// Each built-in follows the same pattern: a constructor wires the
// process-wide dependencies, Module() hands the registry a spec table
// for one top-level block, Setup resets the scratch configuration,
// and Start builds the live components from whatever the document
// said. The blocks are optional; a document without them runs with
// the feature off.
//
// Audit and history do not serve requests themselves, they install
// their components into a Hub. The controller reports every finished
// transition to the hub, which routes it to the currently installed
// recorder and snapshot store. Components survive the stop of the
// configuration that created them so the shutdown, and a failed apply
// after it, still land in the trail; the next successful apply or the
// process exit closes them.
package modules
