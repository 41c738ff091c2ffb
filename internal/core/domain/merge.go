package domain

import "sort"

// MergeContributions reconciles the contributions from one aggregation pass
// into a single record. Contributions are ordered by (reliabilityWeight,
// confidence) descending; the highest-ranked one seeds the record and each
// subsequent one fills only fields still empty. Scalar fields are
// first-writer-wins by priority, never overwritten by a lower-ranked
// source. List fields (genres, tags, images, credits) are unioned with
// order-preserving de-duplication. External IDs are unioned by source.
//
// Returns nil when no contribution carries a usable record; callers
// represent that as not-found, never as a zero-source record.
func MergeContributions(contributions []SourceContribution) *CanonicalRecord {
	ranked := make([]SourceContribution, 0, len(contributions))
	for _, c := range contributions {
		if !c.Record.IsEmpty() {
			ranked = append(ranked, c)
		}
	}
	if len(ranked) == 0 {
		return nil
	}

	// Merge order is rank order, never arrival order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ReliabilityWeight != ranked[j].ReliabilityWeight {
			return ranked[i].ReliabilityWeight > ranked[j].ReliabilityWeight
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	merged := ranked[0].Record.Clone()
	for _, c := range ranked[1:] {
		fillRecord(merged, c.Record)
	}

	merged.Sources = ranked
	merged.QualityScore = Score(ranked, merged)
	return merged
}

// fillRecord copies src fields into dst where dst is still empty, and
// unions list-valued fields.
func fillRecord(dst, src *CanonicalRecord) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Artist == "" {
		dst.Artist = src.Artist
	}
	if dst.Biography == "" {
		dst.Biography = src.Biography
	}
	if dst.Date == "" {
		dst.Date = src.Date
	}
	if dst.Country == "" {
		dst.Country = src.Country
	}
	if len(dst.Tracks) == 0 {
		dst.Tracks = append([]Track(nil), src.Tracks...)
	}

	dst.Images = unionStrings(dst.Images, src.Images)
	dst.Genres = unionStrings(dst.Genres, src.Genres)
	dst.Tags = unionStrings(dst.Tags, src.Tags)
	dst.Credits = unionCredits(dst.Credits, src.Credits)

	for source, id := range src.ExternalIDs {
		if dst.ExternalIDs == nil {
			dst.ExternalIDs = make(map[string]string)
		}
		if _, ok := dst.ExternalIDs[source]; !ok {
			dst.ExternalIDs[source] = id
		}
	}
}

func unionStrings(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[normalizeKey(v)] = true
	}
	for _, v := range extra {
		if k := normalizeKey(v); !seen[k] {
			seen[k] = true
			base = append(base, v)
		}
	}
	return base
}

func unionCredits(base, extra []Credit) []Credit {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base))
	for _, c := range base {
		seen[normalizeKey(c.Name)+"|"+normalizeKey(c.Role)] = true
	}
	for _, c := range extra {
		key := normalizeKey(c.Name) + "|" + normalizeKey(c.Role)
		if !seen[key] {
			seen[key] = true
			base = append(base, c)
		}
	}
	return base
}
