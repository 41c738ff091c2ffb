package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func contribution(source string, weight float64, record *CanonicalRecord) SourceContribution {
	return SourceContribution{
		SourceName:        source,
		ReliabilityWeight: weight,
		Confidence:        1.0,
		Record:            record,
	}
}

func TestScoreEmptyContributions(t *testing.T) {
	assert.Zero(t, Score(nil, &CanonicalRecord{}))
	assert.Zero(t, Score([]SourceContribution{contribution("a", 1.0, nil)}, nil))
}

func TestScoreAlwaysInUnitInterval(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		record  *CanonicalRecord
	}{
		{"single full weight", []float64{1.0}, fullRecord()},
		{"all zero weights", []float64{0, 0}, fullRecord()},
		{"mixed weights sparse record", []float64{0.9, 0.3, 0.1}, &CanonicalRecord{Name: "X"}},
		{"many heavy sources", []float64{1.0, 1.0, 1.0, 1.0}, fullRecord()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var contribs []SourceContribution
			for i, w := range tt.weights {
				contribs = append(contribs, contribution(string(rune('a'+i)), w, tt.record))
			}
			score := Score(contribs, tt.record)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestScoreReliabilityDominates(t *testing.T) {
	// A single highly reliable source must never score below a quorum of
	// low-reliability sources with coincidentally matching fields.
	sparse := &CanonicalRecord{Name: "X"}
	matching := &CanonicalRecord{Name: "X", Country: "US", Date: "1991"}

	single := Score([]SourceContribution{contribution("premium", 1.0, sparse)}, sparse)
	quorum := Score([]SourceContribution{
		contribution("low1", 0.3, matching),
		contribution("low2", 0.3, matching),
		contribution("low3", 0.3, matching),
	}, matching)

	assert.Greater(t, single, quorum)
}

func TestScoreCompletenessBonus(t *testing.T) {
	contribs := []SourceContribution{contribution("a", 0.8, nil)}

	sparse := Score(contribs, &CanonicalRecord{Name: "X"})
	full := Score(contribs, fullRecord())

	assert.Greater(t, full, sparse)
	assert.InDelta(t, MaxCompletenessBonus, full-sparse, MaxCompletenessBonus,
		"bonus bounded by the completeness cap")
}

func TestScoreAgreementBonus(t *testing.T) {
	recordA := &CanonicalRecord{Name: "X", Country: "US"}
	recordB := &CanonicalRecord{Name: "X", Country: "us "}
	merged := &CanonicalRecord{Name: "X", Country: "US"}

	agreeing := Score([]SourceContribution{
		contribution("a", 0.5, recordA),
		contribution("b", 0.5, recordB),
	}, merged)
	alone := Score([]SourceContribution{
		contribution("a", 0.5, recordA),
	}, merged)

	assert.InDelta(t, AgreementBonus, agreeing-alone, 1e-9)
}

func TestScoreYearToleranceAgreement(t *testing.T) {
	merged := &CanonicalRecord{Name: "X"}
	withinOne := Score([]SourceContribution{
		contribution("a", 0.5, &CanonicalRecord{Date: "1991-09-24"}),
		contribution("b", 0.5, &CanonicalRecord{Date: "1992"}),
	}, merged)
	apart := Score([]SourceContribution{
		contribution("a", 0.5, &CanonicalRecord{Date: "1991"}),
		contribution("b", 0.5, &CanonicalRecord{Date: "1998"}),
	}, merged)

	assert.Greater(t, withinOne, apart)
}

func fullRecord() *CanonicalRecord {
	return &CanonicalRecord{
		Name:        "Nirvana",
		Biography:   "An American rock band formed in Aberdeen, Washington in 1987.",
		Images:      []string{"https://img.example/nirvana.jpg"},
		Genres:      []string{"Grunge"},
		Date:        "1987",
		Country:     "US",
		ExternalIDs: map[string]string{"spotify": "6olE6TJLqED3rqDCT0FyPh"},
	}
}
