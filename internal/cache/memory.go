package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"pdfdigest/internal/port"
)

// memItem is a stored value with its expiry deadline (zero = no expiry).
type memItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is the in-process CacheStore backend. Expiry is enforced
// lazily on read.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memItem)}
}

func (s *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, port.ErrKeyNotFound
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, port.ErrKeyNotFound
	}
	return item.value, nil
}

func (s *MemoryStore) Write(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = item
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		if item.expiresAt.IsZero() || now.Before(item.expiresAt) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
