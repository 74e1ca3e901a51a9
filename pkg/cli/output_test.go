package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("FormatJSON did not produce a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("FormatText did not produce a TextFormatter")
	}
	// Unknown formats fall back to text.
	if _, ok := NewFormatter(OutputFormat("yaml")).(*TextFormatter); !ok {
		t.Error("an unknown format did not fall back to text")
	}
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}

	var buf bytes.Buffer
	if err := f.FormatTo(&buf, sample{Name: "apply", Count: 3}); err != nil {
		t.Fatalf("FormatTo() failed: %v", err)
	}

	var got sample
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Name != "apply" || got.Count != 3 {
		t.Errorf("round trip = %+v, want the input back", got)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output is not indented")
	}
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{}

	var buf bytes.Buffer
	if err := f.FormatTo(&buf, "3 snapshots"); err != nil {
		t.Fatalf("FormatTo() failed: %v", err)
	}
	if got, want := buf.String(), "3 snapshots\n"; got != want {
		t.Errorf("FormatTo() wrote %q, want %q", got, want)
	}

	out, err := f.Format(42)
	if err != nil {
		t.Fatalf("Format() failed: %v", err)
	}
	if string(out) != "42\n" {
		t.Errorf("Format() = %q, want %q", out, "42\n")
	}
}
