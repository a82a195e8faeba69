package port

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by a CacheStore when a key has no entry.
var ErrKeyNotFound = errors.New("cache key not found")

// CacheStore abstracts the cache backend. Implementations may be an
// in-process map or an embedded/networked key-value store. Any error other
// than ErrKeyNotFound is treated by the cache manager as a backend outage
// and degrades to a miss; it never fails a request.
type CacheStore interface {
	// Read returns the value for key, or ErrKeyNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores value under key. A non-zero ttl lets backends with
	// native expiry drop the entry on their own; expiry is still checked
	// lazily on read by the manager.
	Write(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and reports how
	// many entries were dropped.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Len reports the number of live entries, for stats only.
	Len(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
