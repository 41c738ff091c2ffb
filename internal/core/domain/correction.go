package domain

import (
	"strings"
	"time"
)

// Correction is one user-submitted field override. Corrections are
// append-only: the latest correction per (entityID, fieldName) wins, and
// superseded ones remain in the log.
type Correction struct {
	// ID uniquely identifies the correction entry.
	ID string `json:"id"`

	// EntityType is the kind of entity being corrected.
	EntityType EntityType `json:"entityType"`

	// EntityID identifies the entity, as produced by CanonicalRecord.EntityID.
	EntityID string `json:"entityId"`

	// FieldName names the corrected field (see CorrectableFields).
	FieldName string `json:"fieldName"`

	// OriginalValue is the displayed value at submission time.
	OriginalValue string `json:"originalValue,omitempty"`

	// CorrectedValue replaces the field on subsequent reads.
	CorrectedValue string `json:"correctedValue"`

	// CreatedAt is when the user submitted the correction.
	CreatedAt time.Time `json:"createdAt"`
}

// CorrectableFields lists the field names corrections may target.
// List-valued fields take comma-separated values.
var CorrectableFields = []string{
	"name", "artist", "biography", "date", "country", "genres",
}

// FieldCorrectable reports whether the named field accepts corrections.
func FieldCorrectable(field string) bool {
	for _, f := range CorrectableFields {
		if f == field {
			return true
		}
	}
	return false
}

// ApplyCorrections overlays the latest correction per field onto a copy of
// the record. The input record is never mutated: historical source
// contributions and the cached merge stay inspectable unchanged.
// Corrections are expected newest-last; later entries win.
func ApplyCorrections(record *CanonicalRecord, corrections []Correction) *CanonicalRecord {
	if record == nil || len(corrections) == 0 {
		return record
	}

	latest := make(map[string]Correction, len(corrections))
	for _, c := range corrections {
		prev, ok := latest[c.FieldName]
		if !ok || !c.CreatedAt.Before(prev.CreatedAt) {
			latest[c.FieldName] = c
		}
	}

	out := record.Clone()
	for _, field := range CorrectableFields {
		c, ok := latest[field]
		if !ok {
			continue
		}
		if setField(out, field, c.CorrectedValue) {
			out.CorrectedFields = append(out.CorrectedFields, field)
		}
	}
	return out
}

// FieldValue returns the displayed value of a correctable field, with
// list fields joined by ", ". Used to capture OriginalValue at submission.
func FieldValue(record *CanonicalRecord, field string) string {
	if record == nil {
		return ""
	}
	switch field {
	case "name":
		return record.Name
	case "artist":
		return record.Artist
	case "biography":
		return record.Biography
	case "date":
		return record.Date
	case "country":
		return record.Country
	case "genres":
		return strings.Join(record.Genres, ", ")
	}
	return ""
}

func setField(record *CanonicalRecord, field, value string) bool {
	switch field {
	case "name":
		record.Name = value
	case "artist":
		record.Artist = value
	case "biography":
		record.Biography = value
	case "date":
		record.Date = value
	case "country":
		record.Country = value
	case "genres":
		parts := strings.Split(value, ",")
		genres := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				genres = append(genres, p)
			}
		}
		record.Genres = genres
	default:
		return false
	}
	return true
}
