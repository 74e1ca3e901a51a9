package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shengxinking/tempesta/pkg/audit"
)

// MemoryStorage implements audit.Storage with an in-memory map.
// Records do not survive a restart; it suits tests and deployments
// that only want recent cycles inspectable while the daemon runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.Record
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store persists an audit record.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations do not reach the stored record.
	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query retrieves records matching the query, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	results := []*audit.Record{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Time.After(results[j].Time)
	})

	if query.Offset >= len(results) {
		return []*audit.Record{}, nil
	}
	results = results[query.Offset:]
	if query.Limit > 0 && query.Limit < len(results) {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of records matching the query.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes records matching the query and returns how many were
// removed.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds; memory storage has no external dependency.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close releases the stored records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*audit.Record)
	return nil
}

// Size returns the number of stored records. Test helper.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func matchesQuery(record *audit.Record, query *audit.Query) bool {
	if query.StartTime != nil && record.Time.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Time.After(*query.EndTime) {
		return false
	}
	if query.Event != "" && record.Event != query.Event {
		return false
	}
	if query.Trigger != "" && record.Trigger != query.Trigger {
		return false
	}
	if query.Outcome != "" && record.Outcome != query.Outcome {
		return false
	}
	return true
}
