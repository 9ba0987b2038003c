package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/temperature-dashboard/internal/temperature"
)

var (
	// ErrNotFound is returned when no dataset has been loaded yet.
	ErrNotFound = errors.New("no temperature dataset loaded")
	// ErrStale is returned when a load result is older than the newest issued load.
	ErrStale = errors.New("stale dataset generation")
)

// Dataset is one immutable load of validated records.
type Dataset struct {
	Records    []temperature.Record
	Generation uint64
	LoadedAt   time.Time
}

// MemoryStore is a concurrency-safe holder for the active dataset. Each load
// is issued a generation number up front; a completed load is only kept if
// no newer generation has been issued since, so a slow response can never
// overwrite a fresher one.
type MemoryStore struct {
	mu sync.RWMutex

	current *Dataset
	issued  uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Issue reserves the next generation number for a load about to start.
func (s *MemoryStore) Issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	return s.issued
}

// Latest returns the newest issued generation.
func (s *MemoryStore) Latest() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issued
}

// IsCurrent reports whether gen is still the newest issued generation.
func (s *MemoryStore) IsCurrent(gen uint64) bool {
	return s.Latest() == gen
}

// Save stores records as the active dataset if gen is the newest issued
// generation. The records slice is copied.
func (s *MemoryStore) Save(gen uint64, records []temperature.Record, at time.Time) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issued {
		return Dataset{}, ErrStale
	}

	ds := &Dataset{
		Records:    append([]temperature.Record(nil), records...),
		Generation: gen,
		LoadedAt:   at,
	}
	s.current = ds
	return *ds, nil
}

// Get returns the active dataset.
func (s *MemoryStore) Get() (Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Dataset{}, ErrNotFound
	}
	return *s.current, nil
}
