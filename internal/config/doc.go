// Package config loads, normalizes, and validates ripline configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RIPLINE_NTFY_TOPIC. Job profiles live here as plain data; the profile
// package turns them into pipeline jobs.
package config
