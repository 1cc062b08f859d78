// Package importer scans a watched directory for dropped-in audio files
// and hands them to the pipeline ahead of feed work.
//
// Files are claimed by renaming them into a per-claim staging directory
// before any processing touches them, so a crash mid-episode never leaves
// a half-processed file masquerading as new work. A failed claim is
// released back to the watched directory by rename, which preserves size
// and modification time and therefore the file's identifier. Staging
// residue older than a grace period is swept into a quarantine directory
// for operator inspection rather than reprocessed.
package importer
