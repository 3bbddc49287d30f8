// Package cache provides the two-tier CacheStore implementations used for
// vote deduplication and request throttling.
//
// The durable tier (Redis) is authoritative across all process instances and
// enforces TTLs natively. The local tier is a best-effort in-process map that
// exists only for the lifetime of one instance. The Fallback decorator
// composes the two: it consults the durable tier first and degrades to the
// local tier on any backend error, so cache outages reduce the strength of
// the dedup guarantee instead of failing requests.
package cache
