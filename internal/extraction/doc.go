// Package extraction wraps the document-understanding call.
//
// The Client contract accepts raw document bytes plus a mime type and
// returns the raw records the model extracted, reporting coarse progress
// through a callback. The Anthropic-backed implementation owns the retry
// loop: rate limiting, upstream outages, and timeouts are retried with
// exponential backoff and jitter up to a bounded attempt count, while bad
// input and authorization failures surface immediately. Callers above this
// package never retry.
package extraction
