// Package domain contains the core business types and pure logic for the
// metadata engine: canonical records, source contributions, the priority
// merge, quality scoring, corrections, and cache entries.
// It has no dependencies on adapters or external services.
package domain
