package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_DefaultTimeout(t *testing.T) {
	checker := New(0)
	if checker.probeTimeout != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %v", checker.probeTimeout)
	}

	checker = New(10 * time.Second)
	if checker.probeTimeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", checker.probeTimeout)
	}
}

func TestLiveness(t *testing.T) {
	checker := New(5 * time.Second)

	report := checker.Liveness(context.Background())

	if report.Status != "ok" {
		t.Errorf("expected status %q, got %q", "ok", report.Status)
	}
	if report.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
	if len(report.Checks) != 0 {
		t.Error("expected no per-component checks in liveness report")
	}
}

func TestReadiness_NoProbes(t *testing.T) {
	checker := New(5 * time.Second)

	report := checker.Readiness(context.Background())

	if report.Status != "ready" {
		t.Errorf("expected status %q, got %q", "ready", report.Status)
	}
	if report.Checks == nil {
		t.Error("expected non-nil checks map")
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	checker := New(5 * time.Second)
	checker.Register("config", func(ctx context.Context) error { return nil })
	checker.Register("audit", func(ctx context.Context) error { return nil })

	report := checker.Readiness(context.Background())

	if report.Status != "ready" {
		t.Errorf("expected status %q, got %q", "ready", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(report.Checks))
	}
	for name, result := range report.Checks {
		if result.Status != "ok" {
			t.Errorf("expected check %q to be ok, got %q", name, result.Status)
		}
	}
}

func TestReadiness_UnhealthyComponentDegrades(t *testing.T) {
	checker := New(5 * time.Second)
	checker.Register("config", func(ctx context.Context) error { return nil })
	checker.Register("audit", func(ctx context.Context) error {
		return errors.New("database is locked")
	})

	report := checker.Readiness(context.Background())

	if report.Status != "degraded" {
		t.Errorf("expected status %q, got %q", "degraded", report.Status)
	}
	if got := report.Checks["audit"].Message; got != "database is locked" {
		t.Errorf("expected failure message, got %q", got)
	}
	if report.Checks["config"].Status != "ok" {
		t.Errorf("expected config check to stay ok, got %q", report.Checks["config"].Status)
	}
}

func TestReadiness_ProbeTimeout(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	report := checker.Readiness(context.Background())

	if report.Status != "degraded" {
		t.Errorf("expected status %q, got %q", "degraded", report.Status)
	}
	if got := report.Checks["slow"].Message; got != "health check timeout" {
		t.Errorf("expected timeout message, got %q", got)
	}
}

func TestRegister_ReplaceAndDeregister(t *testing.T) {
	checker := New(5 * time.Second)

	checker.Register("config", func(ctx context.Context) error {
		return errors.New("first")
	})
	checker.Register("config", func(ctx context.Context) error { return nil })

	report := checker.Readiness(context.Background())
	if report.Checks["config"].Status != "ok" {
		t.Errorf("expected replacement probe to win, got %q", report.Checks["config"].Status)
	}

	checker.Deregister("config")
	report = checker.Readiness(context.Background())
	if len(report.Checks) != 0 {
		t.Errorf("expected no checks after deregister, got %d", len(report.Checks))
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(5 * time.Second)
	handler := checker.LivenessHandler()

	tests := []struct {
		name       string
		method     string
		wantStatus int
		checkBody  bool
	}{
		{"GET request", http.MethodGet, http.StatusOK, true},
		{"HEAD request", http.MethodHead, http.StatusOK, false},
		{"POST request", http.MethodPost, http.StatusMethodNotAllowed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.checkBody {
				var report Report
				if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if report.Status != "ok" {
					t.Errorf("expected status %q, got %q", "ok", report.Status)
				}
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*Checker)
		wantStatus int
		wantHealth string
	}{
		{
			name: "all healthy",
			setup: func(c *Checker) {
				c.Register("config", func(ctx context.Context) error { return nil })
			},
			wantStatus: http.StatusOK,
			wantHealth: "ready",
		},
		{
			name: "degraded",
			setup: func(c *Checker) {
				c.Register("config", func(ctx context.Context) error { return nil })
				c.Register("audit", func(ctx context.Context) error {
					return errors.New("failed")
				})
			},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "degraded",
		},
		{
			name:       "no probes",
			setup:      func(c *Checker) {},
			wantStatus: http.StatusOK,
			wantHealth: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(5 * time.Second)
			tt.setup(checker)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()

			checker.ReadinessHandler()(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var report Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if report.Status != tt.wantHealth {
				t.Errorf("expected health %q, got %q", tt.wantHealth, report.Status)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	handler := VersionHandler("1.0.0", "abc123", "2026-08-25T00:00:00Z")

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if info.Version != "1.0.0" {
		t.Errorf("expected version %q, got %q", "1.0.0", info.Version)
	}
	if info.Commit != "abc123" {
		t.Errorf("expected commit %q, got %q", "abc123", info.Commit)
	}
	if info.GoVersion == "" {
		t.Error("expected non-empty go version")
	}
}

func TestMount(t *testing.T) {
	mux := http.NewServeMux()
	checker := New(5 * time.Second)

	Mount(mux, checker, "1.0.0", "abc123", "2026-08-25")

	for _, path := range []string{"/health", "/ready", "/version"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
		})
	}
}
