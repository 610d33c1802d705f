// Package config loads, normalizes, and validates tourneyreel configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, applies a working-directory .env file, and
// honours environment fallbacks such as TOURNEYREEL_SCHEDULE_URL. Per-event
// exceptions to automatic matching (boundary marker files, missed games per
// court) live here so the matcher receives them as plain parameters.
package config
