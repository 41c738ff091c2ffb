package domain

import (
	"strconv"
	"strings"
)

// Quality scoring constants. Reliability dominates; completeness and
// agreement are secondary adjustments, so a single highly reliable source
// never scores below a quorum of low-reliability sources with
// coincidentally matching fields.
const (
	// MaxCompletenessBonus is added in proportion to populated fields.
	MaxCompletenessBonus = 0.2

	// AgreementBonus is added when two or more sources agree on a
	// normalized key field (year or country).
	AgreementBonus = 0.1

	// MinBiographyLength is the threshold below which a biography does
	// not count towards completeness.
	MinBiographyLength = 40

	// completenessFields is how many canonical fields completeness
	// considers: name, biography, image, genre, date, country, external id.
	completenessFields = 7
)

// Score computes the confidence score for a merged record over its
// contribution set. Base score is the normalized weighted average of the
// contributing sources' reliability weights (absent sources never
// penalize), plus a completeness bonus and a cross-source agreement bonus,
// clamped to [0,1]. Pure: no I/O, deterministic for given inputs.
func Score(contributions []SourceContribution, merged *CanonicalRecord) float64 {
	if len(contributions) == 0 || merged == nil {
		return 0
	}

	score := baseScore(contributions)
	score += MaxCompletenessBonus * completeness(merged)
	if sourcesAgree(contributions) {
		score += AgreementBonus
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// baseScore is the weighted average of reliability weights, normalized to
// sum to 1 across contributing sources only. With each contribution
// weighted by its own reliability this reduces to sum(w^2)/sum(w), which
// keeps a lone 1.0-weight source at 1.0 and pulls mixed sets towards the
// heavier sources.
func baseScore(contributions []SourceContribution) float64 {
	var weightSum, weighted float64
	for _, c := range contributions {
		weightSum += c.ReliabilityWeight
		weighted += c.ReliabilityWeight * c.ReliabilityWeight
	}
	if weightSum == 0 {
		return 0
	}
	return weighted / weightSum
}

// completeness is the fraction of canonical fields populated.
func completeness(r *CanonicalRecord) float64 {
	populated := 0
	if r.Name != "" {
		populated++
	}
	if len(r.Biography) >= MinBiographyLength {
		populated++
	}
	if len(r.Images) > 0 {
		populated++
	}
	if len(r.Genres) > 0 {
		populated++
	}
	if r.Date != "" {
		populated++
	}
	if r.Country != "" {
		populated++
	}
	if len(r.ExternalIDs) > 0 {
		populated++
	}
	return float64(populated) / float64(completenessFields)
}

// sourcesAgree reports whether at least two contributions agree on a
// normalized key field: same country, or years within one of each other.
func sourcesAgree(contributions []SourceContribution) bool {
	var countries []string
	var years []int
	for _, c := range contributions {
		if c.Record == nil {
			continue
		}
		if country := normalizeKey(c.Record.Country); country != "" {
			countries = append(countries, country)
		}
		if y := c.Record.Year(); y != "" {
			if year, err := strconv.Atoi(y); err == nil {
				years = append(years, year)
			}
		}
	}

	for i := 0; i < len(countries); i++ {
		for j := i + 1; j < len(countries); j++ {
			if countries[i] == countries[j] {
				return true
			}
		}
	}
	for i := 0; i < len(years); i++ {
		for j := i + 1; j < len(years); j++ {
			diff := years[i] - years[j]
			if diff >= -1 && diff <= 1 {
				return true
			}
		}
	}
	return false
}

// normalizeKey lowercases and trims a value for comparison.
func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
