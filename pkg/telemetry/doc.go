// Package telemetry groups the daemon's observability packages.
//
// # Components
//
//   - logging: structured slog logger construction
//   - metrics: Prometheus metrics for configuration activity
//   - health: liveness/readiness probes and build info
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	collector := metrics.NewCollector("tempesta", nil)
//	reg := lifecycle.New(lifecycle.Config{Logger: logger, Metrics: collector})
//
// The metrics collector and health checker are served over HTTP by the
// built-in telemetry module when the configuration enables it:
//
//	telemetry {
//	    metrics on;
//	    listen 127.0.0.1:9090;
//	}
//
// # Overhead
//
// Every collector method is nil-safe, so wiring telemetry is optional
// everywhere; a nil *metrics.Collector records nothing.
package telemetry
