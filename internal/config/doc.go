// Package config loads, normalizes, and validates longbox configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// METRON_USERNAME. Naming templates are compiled during validation so a
// template typo is a configuration error caught before any archive is
// touched, never a mid-run failure.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical format names, and clear validation errors.
package config
