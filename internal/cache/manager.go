// Package cache provides the content-addressed result cache with per-key
// single-flight concurrency control and lazy TTL expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
)

// ComputeError wraps a failure raised inside a single-flight computation.
// Every caller waiting on the same key receives the same ComputeError.
type ComputeError struct {
	Key string
	Err error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("computing cache entry %s: %v", e.Key, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// entry is the stored envelope. CreatedAt and TTL let reads observe expiry
// lazily even on backends without native expiry.
type entry struct {
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	TTLSecs   int64           `json:"ttl_secs"`
}

// Stats reports cache performance counters.
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Computes int64 `json:"computes"`
	Entries  int   `json:"entries"`
}

// Manager coordinates cached conversion results. Concurrent callers for
// the same key observe at most one computation; callers for different keys
// never block each other. A failed computation leaves no entry behind. If
// the backend is unreachable the manager degrades to always-miss: the
// cache is a performance optimization, never a correctness dependency.
type Manager struct {
	store port.CacheStore
	ttl   time.Duration
	group singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
}

// NewManager creates a Manager over the given backend. Entries expire ttl
// after creation.
func NewManager(store port.CacheStore, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Get returns the cached payload for key, if present and not expired. It
// never blocks on an in-flight computation.
func (m *Manager) Get(ctx context.Context, key Key) ([]byte, bool) {
	payload, ok := m.lookup(ctx, key.String())
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return payload, ok
}

// GetOrCompute returns the cached payload for key, computing and storing
// it on a miss. Concurrent calls for the same key share one invocation of
// compute and all receive its result, or the same *ComputeError on
// failure. The computation runs detached from any single caller's
// cancellation, since other waiters may depend on it.
func (m *Manager) GetOrCompute(ctx context.Context, key Key, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	ks := key.String()

	if payload, ok := m.lookup(ctx, ks); ok {
		m.hits.Add(1)
		return payload, nil
	}
	m.misses.Add(1)

	v, err, _ := m.group.Do(ks, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)

		// Another flight may have stored the entry between our miss and
		// acquiring the flight.
		if payload, ok := m.lookup(flightCtx, ks); ok {
			return payload, nil
		}

		m.computes.Add(1)
		payload, err := compute(flightCtx)
		if err != nil {
			return nil, &ComputeError{Key: ks, Err: err}
		}
		m.storeEntry(flightCtx, ks, payload)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate removes a single entry.
func (m *Manager) Invalidate(ctx context.Context, key Key) error {
	return m.store.Delete(ctx, key.String())
}

// InvalidateProcessor removes every entry written for a processor and
// reports how many were dropped.
func (m *Manager) InvalidateProcessor(ctx context.Context, p domain.Processor) (int, error) {
	total := 0
	for _, prefix := range processorPrefixes(p) {
		n, err := m.store.DeletePrefix(ctx, prefix)
		total += n
		if err != nil {
			return total, fmt.Errorf("invalidating prefix %s: %w", prefix, err)
		}
	}
	return total, nil
}

// Snapshot returns current counters plus the backend's live entry count.
func (m *Manager) Snapshot(ctx context.Context) Stats {
	entries, err := m.store.Len(ctx)
	if err != nil {
		log.Printf("cache.Manager: counting entries: %v", err)
	}
	return Stats{
		Hits:     m.hits.Load(),
		Misses:   m.misses.Load(),
		Computes: m.computes.Load(),
		Entries:  entries,
	}
}

// lookup reads and validates an entry. Backend errors degrade to a miss.
func (m *Manager) lookup(ctx context.Context, key string) ([]byte, bool) {
	raw, err := m.store.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			log.Printf("cache.Manager: backend read failed, treating as miss: %v", err)
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Printf("cache.Manager: corrupt entry %s, dropping: %v", key, err)
		_ = m.store.Delete(ctx, key)
		return nil, false
	}

	if e.TTLSecs > 0 && time.Now().After(e.CreatedAt.Add(time.Duration(e.TTLSecs)*time.Second)) {
		_ = m.store.Delete(ctx, key)
		return nil, false
	}
	return e.Payload, true
}

// storeEntry writes an entry best-effort. A write failure is logged and
// swallowed: the computed result is still returned to callers.
func (m *Manager) storeEntry(ctx context.Context, key string, payload []byte) {
	e := entry{
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		TTLSecs:   int64(m.ttl / time.Second),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		log.Printf("cache.Manager: marshaling entry %s: %v", key, err)
		return
	}
	if err := m.store.Write(ctx, key, raw, m.ttl); err != nil {
		log.Printf("cache.Manager: backend write failed for %s: %v", key, err)
	}
}
