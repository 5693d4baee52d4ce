package bus

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DedupeCache remembers recently seen keys with the value produced for them.
// The ingestion endpoint uses it to answer a retried request (same
// Idempotency-Key) with the clip id saved the first time. Entries expire
// after ttl; past maxSize the least recently used key is dropped.
type DedupeCache struct {
	entries *expirable.LRU[string, string]
}

// NewDedupeCache creates a cache holding at most maxSize keys.
func NewDedupeCache(ttl time.Duration, maxSize int) *DedupeCache {
	return &DedupeCache{entries: expirable.NewLRU[string, string](maxSize, nil, ttl)}
}

// Lookup returns the value recorded for key if it has not expired.
func (d *DedupeCache) Lookup(key string) (string, bool) {
	return d.entries.Get(key)
}

// Record stores value for key, restarting its ttl.
func (d *DedupeCache) Record(key, value string) {
	d.entries.Add(key, value)
}

// Len reports the number of live keys.
func (d *DedupeCache) Len() int {
	return d.entries.Len()
}
