// Package selector builds the ordered worklist for one scheduler pass
// from the raw feed and import candidates. It is the only place the
// lookback window, duplicate suppression, and cross-source ordering
// rules live.
package selector
