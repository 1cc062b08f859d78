// Package config loads, normalizes, and validates podscribe configuration.
//
// Settings come from a TOML file with environment variable overrides on
// top; the environment names match the original container interface
// (PODCAST_FEEDS, LOOKBACK_DAYS, KEEP_MP3, ...) so existing deployments
// keep working. A .env file next to the process is honoured when present.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical values, and clear validation errors.
package config
