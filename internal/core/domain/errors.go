package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates no catalog returned data for the query.
	// Callers must treat this as "no such entity", not as a failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown entity or connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Connector errors.

	// ErrSourceUnavailable indicates a catalog could not be reached or
	// returned an unusable response. Always recovered locally: the source
	// is excluded from the aggregation pass, never surfaced to the caller.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates the catalog's API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")

	// Cache errors.

	// ErrCacheUnavailable indicates the durable cache tier is unreachable.
	// Recovered by aggregating directly for that request.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrCacheMiss indicates the key is absent or expired in a cache tier.
	ErrCacheMiss = errors.New("cache miss")
)
