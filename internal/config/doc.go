// Package config loads, normalizes, and validates aromasheet configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AROMASHEET_DATA_DIR and AROMASHEET_DATABASE_DSN. The Config type centralizes
// every knob the CLI needs: where sheets are stored, the defaults applied to
// new sheets, pricing inputs, and the optional user catalog.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
