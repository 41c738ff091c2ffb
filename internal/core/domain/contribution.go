package domain

import "time"

// SourceContribution is one catalog's answer to a query, retained on the
// merged record for provenance and UI attribution.
type SourceContribution struct {
	// SourceName identifies the contributing catalog ("spotify", "discogs", ...).
	SourceName string `json:"sourceName"`

	// Record is the connector's normalized result, retained in full so
	// the merge stays inspectable next to any later corrections.
	Record *CanonicalRecord `json:"record,omitempty"`

	// ReliabilityWeight is the connector's static trust weight, in [0,1].
	ReliabilityWeight float64 `json:"reliabilityWeight"`

	// Confidence is how well this result matched the query, in [0,1].
	Confidence float64 `json:"confidence"`

	// FetchedAt is when the catalog answered.
	FetchedAt time.Time `json:"fetchedAt"`
}
