package types

import "time"

// CachedEntry wraps a cached value with its insertion time. Freshness is
// judged by the cache layer (internal/cache), not by the entry itself.
type CachedEntry[T any] struct {
	Value      T
	InsertedAt time.Time
}

// Fresh reports whether the entry was inserted within ttl of now.
func (e CachedEntry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) < ttl
}
