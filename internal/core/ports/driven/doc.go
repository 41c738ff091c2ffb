// Package driven defines the outbound ports of the metadata engine:
// interfaces the core depends on and adapters implement (catalog
// connectors, cache tiers, the correction log, the clock).
package driven
