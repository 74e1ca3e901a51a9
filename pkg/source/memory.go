package source

import (
	"context"
	"sync"
)

// MemorySource holds the configuration document in memory. It is used
// by tests and by programs that embed the framework and compose their
// configuration at runtime.
type MemorySource struct {
	mu   sync.Mutex
	text string
}

// NewMemorySource creates a source returning the given text.
func NewMemorySource(text string) *MemorySource {
	return &MemorySource{text: text}
}

// Load returns the stored text.
func (s *MemorySource) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, nil
}

// SetText replaces the stored text; the next Load returns it.
func (s *MemorySource) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Describe identifies the source for logs and audit records.
func (s *MemorySource) Describe() string {
	return "memory"
}
