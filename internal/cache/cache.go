package cache

import (
	"context"
	"time"
)

// Cache is a goroutine-safe key-value store with per-entry expiry.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. If ttl <= 0, the entry does not expire.
	Set(key K, value V, ttl time.Duration)

	// Delete removes a key if present.
	Delete(key K)

	// DeleteFunc removes every live entry for which match returns true and
	// reports how many were removed.
	DeleteFunc(match func(K, V) bool) int

	// Len returns the number of non-expired entries.
	Len() int

	// PurgeExpired removes expired entries and reports how many went.
	PurgeExpired() int

	// StartJanitor purges expired entries every interval until ctx is done.
	StartJanitor(ctx context.Context, interval time.Duration)
}
