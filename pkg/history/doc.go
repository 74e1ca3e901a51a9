// Package history keeps the configuration documents that were
// successfully applied, one snapshot per accepted document.
//
// Snapshots carry the full raw text plus metadata (UUID, save time,
// SHA-256 hash, source description) and live in a SQLite database so
// they survive restarts. The store retains the newest Keep snapshots,
// pruning older ones on save; a document identical to the latest
// snapshot is not saved again.
//
// The history module saves a snapshot after every successful apply,
// and the command line reads the store back:
//
//	tempesta history list
//	tempesta history show 3f2a9c1e
package history
