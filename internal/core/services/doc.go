// Package services contains the core orchestration of the metadata
// engine: the aggregator that fans out to catalog connectors and merges
// their answers, the two-tier cache, the correction service, the
// connector registry, and the periodic cache sweeper.
package services
