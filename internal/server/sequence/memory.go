package sequence

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

type counterKey struct {
	entity models.EntityType
	year   int
}

// MemoryStore is an in-process Store. The latest code per entity is set by
// the caller through Record, standing in for the entity tables.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]int64
	latest   map[models.EntityType]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[counterKey]int64),
		latest:   make(map[models.EntityType]string),
	}
}

// Record notes code as the most recently created identifier of entity.
func (s *MemoryStore) Record(entity models.EntityType, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[entity] = code
}

func (s *MemoryStore) Increment(_ context.Context, entity models.EntityType, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := counterKey{entity, year}
	v, ok := s.counters[k]
	if !ok {
		return 0, common.ErrorNotFound
	}
	v++
	s.counters[k] = v
	return v, nil
}

func (s *MemoryStore) Seed(_ context.Context, entity models.EntityType, year int, floor int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := counterKey{entity, year}
	v := max(s.counters[k], floor) + 1
	s.counters[k] = v
	return v, nil
}

func (s *MemoryStore) LatestCode(_ context.Context, entity models.EntityType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.latest[entity]
	if !ok {
		return "", common.ErrorNotFound
	}
	return code, nil
}
