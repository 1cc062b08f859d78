// Package media defines the episode candidate model shared by the feed
// and import sources, including the deterministic identifiers the state
// store keys on and the filename sanitization rules for output artifacts.
package media
