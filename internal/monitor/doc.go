// Package monitor is the scheduler: it runs discovery passes over the
// configured feeds and the import directory, hands the selected
// candidates to the processor one at a time, then sleeps. Passes never
// overlap; the next pass starts only after the previous one has fully
// finished. Per-feed failures are isolated and logged, and only a state
// store failure stops the daemon.
package monitor
