// Package config loads, normalizes, and validates cadence configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CADENCE_PLATFORM_API_KEY. The Config type centralizes every knob the daemon
// and CLI need, allowing data/log directories, platform credentials, and
// scoring thresholds to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
