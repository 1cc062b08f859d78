// Package notifications delivers best-effort Discord webhook messages.
// Delivery failures are logged by callers and never affect pipeline
// outcomes; with no webhook configured a noop implementation is used.
package notifications
