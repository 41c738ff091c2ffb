package domain

import (
	"fmt"
	"strings"
)

// EntityType identifies the kind of entity a query targets.
type EntityType string

// Supported entity types.
const (
	EntityArtist EntityType = "artist"
	EntityAlbum  EntityType = "album"
	EntityTrack  EntityType = "track"
)

// Valid reports whether the entity type is one the engine knows.
func (t EntityType) Valid() bool {
	switch t {
	case EntityArtist, EntityAlbum, EntityTrack:
		return true
	}
	return false
}

// Query describes one logical metadata lookup.
type Query struct {
	// Type is the kind of entity being looked up.
	Type EntityType

	// Term is the raw, user-facing query text (artist name or album title).
	Term string

	// ArtistHint disambiguates album and track lookups.
	// Empty for artist lookups.
	ArtistHint string
}

// Normalized returns the query term stripped of disambiguation noise:
// parenthesised or bracketed suffixes, "feat." tails, collapsed whitespace.
// Connectors search with the normalized form and may try variants.
func (q Query) Normalized() string {
	return NormalizeTerm(q.Term)
}

// CacheKey returns the canonical cache key for this query.
// Keys are namespaced by entity type so per-type TTLs can apply.
func (q Query) CacheKey() string {
	key := fmt.Sprintf("%s:%s", q.Type, strings.ToLower(q.Normalized()))
	if q.ArtistHint != "" {
		key += ":" + strings.ToLower(NormalizeTerm(q.ArtistHint))
	}
	return key
}

// NormalizeTerm strips disambiguation suffixes and collapses whitespace.
// "Nirvana (band)" -> "Nirvana", "Help! [Remastered]" -> "Help!".
func NormalizeTerm(term string) string {
	s := strings.TrimSpace(term)

	// Drop a trailing parenthesised or bracketed qualifier.
	for _, open := range []string{"(", "["} {
		if idx := strings.Index(s, open); idx > 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}

	// Drop featured-artist tails.
	lower := strings.ToLower(s)
	for _, marker := range []string{" feat. ", " feat ", " ft. ", " ft "} {
		if idx := strings.Index(lower, marker); idx > 0 {
			s = strings.TrimSpace(s[:idx])
			break
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

// MatchConfidence estimates how well a catalog result name answers the
// query term, in [0,1]. Exact normalized match scores 1.0, a containment
// match 0.85, otherwise the token overlap ratio. Connectors attach this to
// each contribution so the merge can break ties between equal weights.
func MatchConfidence(queryTerm, resultName string) float64 {
	q := strings.ToLower(NormalizeTerm(queryTerm))
	r := strings.ToLower(NormalizeTerm(resultName))
	if q == "" || r == "" {
		return 0
	}
	if q == r {
		return 1.0
	}
	if strings.Contains(r, q) || strings.Contains(q, r) {
		return 0.85
	}

	qTokens := strings.Fields(q)
	rTokens := make(map[string]bool)
	for _, tok := range strings.Fields(r) {
		rTokens[tok] = true
	}
	matched := 0
	for _, tok := range qTokens {
		if rTokens[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}
