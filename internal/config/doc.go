// Package config loads, normalizes, and validates voicecheck configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VOICECHECK_PYTHON. The Config type centralizes the engine invocation,
// script decoding, and directory knobs the CLI needs so they are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
