package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat selects how query commands render their results.
type OutputFormat string

const (
	// FormatText is line-oriented output for humans (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON for scripts.
	FormatJSON OutputFormat = "json"
)

// Formatter renders command output.
type Formatter interface {
	Format(data any) ([]byte, error)
	FormatTo(w io.Writer, data any) error
}

// TextFormatter renders with the value's own formatting.
type TextFormatter struct{}

func (f *TextFormatter) Format(data any) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter renders indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// NewFormatter creates a formatter for the given format. Unknown
// formats fall back to text.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}
