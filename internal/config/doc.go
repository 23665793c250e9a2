// Package config loads and validates the TOML configuration file.
//
// Configuration sections by subsystem:
//   - Paths: working directories and the catalog database location
//   - Extraction: document-understanding model connection and retry budget
//   - Remote: optional remote storage provider (listing/fetch/upload API)
//   - Engine: pacing and watch-mode polling intervals
//   - Catalog: results archive toggles
//   - Logging: log format and level
//
// Load resolves the file (explicit path, ~/.config/mailroom/config.toml, or
// ./mailroom.toml), applies defaults, expands paths, and validates ranges.
package config
