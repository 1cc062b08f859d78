// Package state persists which episode identifiers have completed the
// full pipeline. The backing file is a plain append-only log, one
// identifier per line, loaded into an in-memory set at startup. The file
// is part of the external interface: host tooling may tail it, so it is
// never truncated or rewritten, only appended to.
package state
