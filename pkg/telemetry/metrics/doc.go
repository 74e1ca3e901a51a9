// Package metrics provides Prometheus metrics for the configuration
// framework.
//
// # Overview
//
// A Collector owns a private Prometheus registry and a small fixed set
// of metrics describing configuration activity: apply cycles and their
// durations, parse failures, dispatched entries, registered modules,
// shutdowns, and control-channel events. Recording methods are safe on
// a nil *Collector, so metrics stay strictly optional for embedders.
//
// # Usage
//
//	collector := metrics.NewCollector("tempesta", nil)
//
//	// Wire into the lifecycle registry.
//	reg := lifecycle.New(lifecycle.Config{Metrics: collector})
//
//	// Expose a scrape endpoint.
//	http.Handle("/metrics", collector.Handler())
//
// # Exposition
//
// Metrics are exposed in the standard format, for example:
//
//	# HELP tempesta_cfg_applies_total Configuration apply cycles by outcome
//	# TYPE tempesta_cfg_applies_total counter
//	tempesta_cfg_applies_total{outcome="success"} 3
//
// The scrape endpoint itself is configured in the tempesta
// configuration language through the built-in telemetry module, so it
// starts and stops with the rest of the configuration.
package metrics
