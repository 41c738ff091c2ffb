// Package connectors contains one sub-package per external music catalog.
//
// Each sub-package implements ports/driven.Connector for its catalog:
// it speaks the catalog's wire protocol, maps responses into
// domain.CanonicalRecord, and paces its own requests where the catalog
// demands it. Connectors never fail an aggregation pass: every transport
// or protocol failure surfaces as an empty result set wrapped in
// domain.ErrSourceUnavailable, and the aggregator degrades gracefully.
package connectors
