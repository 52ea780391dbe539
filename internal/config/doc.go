// Package config loads, normalizes, and validates fakebench configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/fakebench/config.toml or a
// project-local fakebench.toml. The Config type centralizes every knob the
// CLI needs: dataset compression level, ffmpeg settings, external tool
// commands, and evaluation defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
