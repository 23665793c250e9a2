// Package logging centralizes slog handler construction for the CLI and the
// watch daemon.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for log files and machine consumption. The default format is
// chosen by whether stdout is a terminal. Helper constructors mirror the
// slog.Attr API so call sites stay terse, and NewNop returns a logger that
// discards everything for tests.
package logging
