// Tempesta is a block-structured configuration framework and the
// daemon that drives it.
//
// Modules declare typed specifications for the configuration entries
// they accept; the daemon parses one configuration document and pushes
// every registered module through an all-or-nothing lifecycle:
//   - Entry grammar with nested blocks and typed value handlers
//   - File and git document sources
//   - A watched state file toggling the configuration on and off
//   - Apply auditing with in-memory or SQLite storage plus retention
//   - Snapshot history of every accepted document
//   - Prometheus metrics and health probes while started
//
// Usage:
//
//	# Start the daemon with the default bootstrap configuration
//	tempesta run
//
//	# Start with a custom bootstrap file
//	tempesta run --config /etc/tempesta/tempesta.yaml
//
//	# Check a configuration document without applying it
//	tempesta check /etc/tempesta/tempesta.conf
//
//	# Apply or shut down the running daemon's configuration
//	tempesta state start
//	tempesta state stop
//
//	# Inspect accepted configuration snapshots
//	tempesta history list
//
//	# Query the apply audit trail
//	tempesta audit list --since 24h
//
//	# Show version information
//	tempesta version
//
// For complete documentation, see: https://github.com/shengxinking/tempesta
package main

func main() {
	Execute()
}
