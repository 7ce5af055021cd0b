// Package memory provides an in-process Record Store. It backs tests and
// the ephemeral "memory" backend; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/msomdec/campuscoders/internal/domain"
)

// Store is a map-backed domain.RecordStore and domain.Database.
type Store struct {
	mu      sync.Mutex
	records map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Records() domain.RecordStore { return s }

func (s *Store) Close() error { return nil }
