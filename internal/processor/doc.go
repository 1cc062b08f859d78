// Package processor drives one episode through the full pipeline:
// acquire audio (feed download or import claim), transcribe, write the
// transcript atomically, apply audio retention, notify, and finally
// commit the episode identifier to the state store. The commit is always
// the last step, so a crash anywhere earlier leaves the episode eligible
// for a clean retry on the next pass.
package processor
