// Package health serves liveness and readiness probes for the daemon.
//
// # Overview
//
// The health package implements liveness and readiness probes for
// Kubernetes and other orchestration systems, plus a build-information
// endpoint. Components register probe functions; the telemetry module
// mounts the handlers on its HTTP listener next to /metrics.
//
// # Endpoints
//
//   - /health: liveness probe - the process is running
//   - /ready: readiness probe - every registered component is healthy
//   - /version: build information - version, commit, build time
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.Register("config", func(ctx context.Context) error {
//	    if !registry.Started() {
//	        return errors.New("configuration not applied")
//	    }
//	    return nil
//	})
//
//	mux := http.NewServeMux()
//	health.Mount(mux, checker, "1.0.0", "abc123", "2026-08-25")
//
// # Liveness vs Readiness
//
// The liveness probe only proves the process is answering requests; it
// never runs component probes, so orchestrators can call it
// aggressively. The readiness probe runs every registered probe
// concurrently under a timeout and answers 503 when any component is
// unhealthy.
//
// Typical component probes here:
//   - config: a configuration has been applied and modules are running
//   - audit: the audit store answers a ping
//   - history: the snapshot store answers a ping
package health
