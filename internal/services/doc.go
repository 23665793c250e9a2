// Package services defines shared utilities consumed by the batch engine and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp work item IDs, component names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that distinguish
//     retryable failures (rate limiting, upstream outages) from terminal
//     ones (bad input, missing authorization).
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
