// Package logging builds the slog loggers used across podscribe.
//
// Two output formats are supported: a human-oriented console format for
// interactive use and JSON for log shippers. When no format is configured
// the package picks console on a terminal and JSON otherwise. Attribute
// helpers keep field names consistent between packages.
package logging
