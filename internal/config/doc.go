// Package config loads, normalizes, and validates the TOML configuration for
// the montage pipeline: external tool binaries, scratch and log directories,
// segment tier counts, and overlay layout tunables.
package config
