package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryRecord struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store for local development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("statestore: marshal %s: %w", key, err)
	}
	rec := memoryRecord{data: data}
	if ttl > 0 {
		rec.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.records[key] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string, out any) (bool, error) {
	s.mu.Lock()
	rec, ok := s.live(key)
	s.mu.Unlock()
	return decodeRecord(key, rec, ok, out)
}

func (s *MemoryStore) Consume(_ context.Context, key string, out any) (bool, error) {
	s.mu.Lock()
	rec, ok := s.live(key)
	delete(s.records, key)
	s.mu.Unlock()
	return decodeRecord(key, rec, ok, out)
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// live must be called with mu held.
func (s *MemoryStore) live(key string) (memoryRecord, bool) {
	rec, ok := s.records[key]
	if !ok {
		return memoryRecord{}, false
	}
	if !rec.expiresAt.IsZero() && !s.now().Before(rec.expiresAt) {
		delete(s.records, key)
		return memoryRecord{}, false
	}
	return rec, true
}

func decodeRecord(key string, rec memoryRecord, ok bool, out any) (bool, error) {
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(rec.data, out); err != nil {
		return false, fmt.Errorf("statestore: decode %s: %w", key, err)
	}
	return true, nil
}
