// Package textutil provides text processing utilities for filename
// sanitization, digit-run extraction, and display-title derivation.
//
// The primary use cases are:
//   - Sanitizing suggested filenames and path segments for safe filesystem use
//   - Scanning source filenames for reference-number digit runs
//   - Deriving human-readable titles from file paths
package textutil
