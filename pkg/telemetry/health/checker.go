package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of a single component probe.
type Result struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the error text for unhealthy components.
	Message string `json:"message,omitempty"`

	// Duration is how long the probe took.
	Duration time.Duration `json:"duration,omitempty"`
}

// Report is the aggregated health of the daemon.
type Report struct {
	// Status is "ok" (liveness), "ready" or "degraded" (readiness).
	Status string `json:"status"`

	// Checks holds per-component results for readiness reports.
	Checks map[string]Result `json:"checks,omitempty"`

	// Timestamp is when the report was produced.
	Timestamp time.Time `json:"timestamp"`
}

// Checker runs registered component probes. The telemetry module
// registers one probe per subsystem it can observe (the configuration
// registry, audit storage, history storage) and serves the results on
// its HTTP listener.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	probeTimeout time.Duration
}

// New creates a Checker. A zero timeout defaults to 5 seconds per
// probe.
func New(probeTimeout time.Duration) *Checker {
	if probeTimeout == 0 {
		probeTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		probeTimeout: probeTimeout,
	}
}

// Register adds a named probe, replacing any previous probe with the
// same name.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Deregister removes a named probe.
func (c *Checker) Deregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Liveness reports that the process is running. It never consults the
// registered probes, so it stays fast enough for aggressive probing.
func (c *Checker) Liveness(ctx context.Context) Report {
	return Report{
		Status:    "ok",
		Timestamp: time.Now(),
	}
}

// Readiness runs every registered probe concurrently and aggregates
// the results. Any unhealthy component degrades the overall status.
func (c *Checker) Readiness(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if len(checks) == 0 {
		return Report{
			Status:    "ready",
			Checks:    make(map[string]Result),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]Result)
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.probe(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := "ready"
	for _, result := range results {
		if result.Status == "unhealthy" {
			status = "degraded"
		}
	}

	return Report{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// probe executes a single check under the probe timeout.
func (c *Checker) probe(ctx context.Context, check CheckFunc) Result {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(probeCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return Result{
				Status:   "unhealthy",
				Message:  err.Error(),
				Duration: duration,
			}
		}
		return Result{
			Status:   "ok",
			Duration: duration,
		}

	case <-probeCtx.Done():
		return Result{
			Status:   "unhealthy",
			Message:  "health check timeout",
			Duration: time.Since(start),
		}
	}
}
