package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordsApplies(t *testing.T) {
	c := NewCollector("test", nil)

	c.ObserveApply("success", 10*time.Millisecond)
	c.ObserveApply("success", 5*time.Millisecond)
	c.ObserveApply("failure", 1*time.Millisecond)

	if got := testutil.ToFloat64(c.appliesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("applies_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.appliesTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("applies_total{failure} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.running); got != 1 {
		t.Errorf("running = %v, want 1 after a successful apply", got)
	}

	c.ObserveShutdown()
	if got := testutil.ToFloat64(c.running); got != 0 {
		t.Errorf("running = %v, want 0 after shutdown", got)
	}
	if got := testutil.ToFloat64(c.shutdowns); got != 1 {
		t.Errorf("shutdowns_total = %v, want 1", got)
	}
}

func TestCollector_ParseCounters(t *testing.T) {
	c := NewCollector("test", nil)

	c.AddEntriesParsed(7)
	c.AddEntriesParsed(0) // ignored
	c.IncParseErrors()
	c.SetModulesRegistered(3)

	if got := testutil.ToFloat64(c.entriesParsed); got != 7 {
		t.Errorf("entries_parsed_total = %v, want 7", got)
	}
	if got := testutil.ToFloat64(c.parseErrors); got != 1 {
		t.Errorf("parse_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.modulesRegistered); got != 3 {
		t.Errorf("modules_registered = %v, want 3", got)
	}
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector

	// None of these may panic.
	c.ObserveApply("success", time.Second)
	c.ObserveShutdown()
	c.AddEntriesParsed(1)
	c.IncParseErrors()
	c.SetModulesRegistered(1)
	c.IncControlEvent("start")
	if c.Registry() != nil {
		t.Error("Registry() on nil collector = non-nil")
	}
}

func TestCollector_ExposesNamespacedNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("", reg)
	c.ObserveApply("success", time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "tempesta_cfg_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("no tempesta_cfg_* families exposed; default namespace not applied")
	}
}
