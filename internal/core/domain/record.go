package domain

import "strings"

// CanonicalRecord is the unified, source-agnostic representation of an
// artist, album, or track. Every field is optional: no single catalog
// guarantees completeness, and absence is a first-class non-error state.
type CanonicalRecord struct {
	// Type is the entity variant this record describes.
	Type EntityType `json:"type"`

	// Name is the artist name or album/track title.
	Name string `json:"name,omitempty"`

	// Artist is the performing artist for album and track records.
	Artist string `json:"artist,omitempty"`

	// ExternalIDs maps source name to that catalog's identifier.
	ExternalIDs map[string]string `json:"externalIds,omitempty"`

	// Biography is the biography or description text.
	Biography string `json:"biography,omitempty"`

	// Images holds artwork URLs, best first.
	Images []string `json:"images,omitempty"`

	// Genres holds genre and style tags.
	Genres []string `json:"genres,omitempty"`

	// Tags holds free-form community tags (distinct from curated genres).
	Tags []string `json:"tags,omitempty"`

	// Date is the release date (albums/tracks) or formation date (artists),
	// as "YYYY" or "YYYY-MM-DD" depending on source precision.
	Date string `json:"date,omitempty"`

	// Country is the artist's country of origin or the release country.
	Country string `json:"country,omitempty"`

	// Tracks lists an album's track listing.
	Tracks []Track `json:"tracks,omitempty"`

	// Credits lists personnel credits (producer, engineer, guest players).
	Credits []Credit `json:"credits,omitempty"`

	// QualityScore is the derived confidence in this record, in [0,1].
	// Recomputed whenever the contribution set changes.
	QualityScore float64 `json:"qualityScore"`

	// Sources records which catalogs contributed, for provenance and the
	// UI attribution badge. Never empty on a record returned from the
	// merge path.
	Sources []SourceContribution `json:"sources,omitempty"`

	// CorrectedFields names fields overridden by user corrections, so the
	// UI can badge edited values. Populated by the overlay pass only.
	CorrectedFields []string `json:"correctedFields,omitempty"`
}

// Track is one entry in an album's track listing.
type Track struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	// DurationSec is the track length in seconds, 0 when unknown.
	DurationSec int `json:"durationSec,omitempty"`
}

// Credit is one personnel credit on a record.
type Credit struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// IsEmpty reports whether the record carries no usable metadata.
// Connectors return empty records instead of errors on failure, and the
// aggregator drops them before merging.
func (r *CanonicalRecord) IsEmpty() bool {
	return r == nil || (r.Name == "" &&
		r.Biography == "" &&
		len(r.Images) == 0 &&
		len(r.Genres) == 0 &&
		len(r.Tags) == 0 &&
		r.Date == "" &&
		r.Country == "" &&
		len(r.Tracks) == 0 &&
		len(r.Credits) == 0 &&
		len(r.ExternalIDs) == 0)
}

// Year returns the four-digit year prefix of Date, or empty.
func (r *CanonicalRecord) Year() string {
	if len(r.Date) >= 4 {
		return r.Date[:4]
	}
	return ""
}

// Clone returns a deep copy. The overlay pass mutates a clone so the
// cached merged record stays inspectable unchanged.
func (r *CanonicalRecord) Clone() *CanonicalRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.ExternalIDs != nil {
		out.ExternalIDs = make(map[string]string, len(r.ExternalIDs))
		for k, v := range r.ExternalIDs {
			out.ExternalIDs[k] = v
		}
	}
	out.Images = append([]string(nil), r.Images...)
	out.Genres = append([]string(nil), r.Genres...)
	out.Tags = append([]string(nil), r.Tags...)
	out.Tracks = append([]Track(nil), r.Tracks...)
	out.Credits = append([]Credit(nil), r.Credits...)
	out.Sources = append([]SourceContribution(nil), r.Sources...)
	out.CorrectedFields = append([]string(nil), r.CorrectedFields...)
	return &out
}

// EntityID returns the stable identifier corrections attach to:
// the record's type plus its normalized name (and artist for albums).
func (r *CanonicalRecord) EntityID() string {
	id := string(r.Type) + ":" + strings.ToLower(NormalizeTerm(r.Name))
	if r.Artist != "" {
		id += ":" + strings.ToLower(NormalizeTerm(r.Artist))
	}
	return id
}
