// Package config loads, normalizes, and validates reelsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY. The Config type centralizes every knob the CLI needs: dataset
// URLs, scraper pacing and budgets, filter thresholds, and store batching.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
