package domain

import "time"

// CacheEntry is one cached aggregation result. The same shape lives in
// both tiers; durable entries survive restarts, memory entries do not.
// Entries are immutable once written: updates replace the whole entry.
type CacheEntry struct {
	// Key is the canonical query key.
	Key string `json:"key"`

	// Payload is the merged record. Nil marks a cached negative result
	// (the query found nothing); negatives live only in the memory tier.
	Payload *CanonicalRecord `json:"payload,omitempty"`

	// CreatedAt is when the entry was written.
	CreatedAt time.Time `json:"createdAt"`

	// ExpiresAt is when the entry stops being served. Expiry is checked
	// lazily on read; a periodic sweep reclaims storage.
	ExpiresAt time.Time `json:"expiresAt"`

	// AccessCount and LastAccessedAt are updated on every hit, for
	// observability and a possible future LRU policy.
	AccessCount    int64     `json:"accessCount"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Negative reports whether the entry caches a not-found result.
func (e *CacheEntry) Negative() bool {
	return e.Payload == nil
}

// CacheStats summarizes cache behaviour for the UI's stats endpoint.
type CacheStats struct {
	Hits            int64   `json:"hits"`
	Misses          int64   `json:"misses"`
	HitRate         float64 `json:"hitRate"`
	EntryCount      int     `json:"entryCount"`
	AvgQualityScore float64 `json:"avgQualityScore"`
}
