// Package importer merges storage listings into the work queue without
// duplicating items that were seen before.
package importer

import (
	"context"
	"fmt"
	"strings"

	"mailroom/internal/queue"
	"mailroom/internal/storage"
)

// Result summarizes one merge pass.
type Result struct {
	Added   []queue.Item
	Skipped int
}

// Merge inserts listing entries whose natural key is not already present in
// the store. Listing order is preserved and existing items are never
// touched, so re-running with the same listing is a no-op.
func Merge(store *queue.Store, kind queue.SourceKind, listing []storage.Entry) Result {
	seen := store.NaturalKeys()
	var result Result
	for _, entry := range listing {
		displayName := strings.TrimSpace(entry.DisplayName)
		if displayName == "" {
			displayName = entry.ID
		}
		key := naturalKey(kind, entry, displayName)
		if key == "" {
			result.Skipped++
			continue
		}
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}

		var item queue.Item
		if kind == queue.SourceRemote {
			item = store.NewRemoteItem(entry.ID, displayName, entry.MimeHint)
		} else {
			item = store.NewLocalItem(entry.ID, displayName, entry.MimeHint)
		}
		result.Added = append(result.Added, item)
	}
	return result
}

// Sync lists a source location and merges the result into the store.
func Sync(ctx context.Context, source storage.Source, location string, kind queue.SourceKind, store *queue.Store) (Result, error) {
	listing, err := source.List(ctx, location)
	if err != nil {
		return Result{}, fmt.Errorf("import: list source: %w", err)
	}
	return Merge(store, kind, listing), nil
}

func naturalKey(kind queue.SourceKind, entry storage.Entry, displayName string) string {
	if kind == queue.SourceRemote {
		return strings.TrimSpace(entry.ID)
	}
	return displayName
}
