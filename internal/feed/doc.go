// Package feed turns one RSS/Atom feed into episode candidates.
//
// Fetch failures (network, non-2xx) and parse failures (malformed XML) are
// reported through distinct sentinel errors so the scheduler can log them
// accurately; either way the feed is skipped for the pass and retried on
// the next tick. Entries without a resolvable audio enclosure or a
// parsable publish date are dropped with a warning, never treated as
// fatal.
package feed
