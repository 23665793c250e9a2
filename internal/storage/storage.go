// Package storage abstracts where scanned documents live. The engine and
// importer only see the Source contract; local directories and the remote
// document service both satisfy it.
package storage

import "context"

// Entry describes one document available from a source listing.
type Entry struct {
	ID          string
	DisplayName string
	MimeHint    string
}

// Source lists, fetches, and stores documents for a given location.
type Source interface {
	List(ctx context.Context, location string) ([]Entry, error)
	Fetch(ctx context.Context, id string) ([]byte, error)
	Upload(ctx context.Context, content []byte, destination, filename, description string) (string, error)
}
