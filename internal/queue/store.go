package queue

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an item ID has no entry in the store.
var ErrNotFound = errors.New("queue item not found")

// Store is the in-memory work item collection. All access is mutex-guarded;
// order is the insertion order.
type Store struct {
	mu    sync.Mutex
	items []Item
	index map[string]int
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// NewLocalItem enqueues a pending item backed by a local file.
func (s *Store) NewLocalItem(path, displayName, mimeHint string) Item {
	if strings.TrimSpace(displayName) == "" {
		displayName = path
	}
	return s.add(Item{
		SourceRef:   SourceRef{Kind: SourceLocal, LocalPath: path, MimeHint: mimeHint},
		DisplayName: displayName,
	})
}

// NewRemoteItem enqueues a pending item backed by a remote reference.
func (s *Store) NewRemoteItem(remoteID, displayName, mimeHint string) Item {
	return s.add(Item{
		SourceRef:   SourceRef{Kind: SourceRemote, RemoteID: remoteID, MimeHint: mimeHint},
		DisplayName: displayName,
	})
}

func (s *Store) add(item Item) Item {
	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.Status = StatusPending
	item.CreatedAt = now
	item.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
	return item.Clone()
}

// Get fetches a queue item by identifier.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[pos].Clone(), true
}

// List returns items in insertion order, optionally filtered by status.
func (s *Store) List(statuses ...Status) []Item {
	filter := make(map[Status]struct{}, len(statuses))
	for _, status := range statuses {
		filter[status] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if len(filter) > 0 {
			if _, ok := filter[item.Status]; !ok {
				continue
			}
		}
		out = append(out, item.Clone())
	}
	return out
}

// Update replaces the stored item wholesale. Partial in-place mutation is
// never visible; the last writer wins.
func (s *Store) Update(item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[item.ID]
	if !ok {
		return fmt.Errorf("update item %s: %w", item.ID, ErrNotFound)
	}
	item.UpdatedAt = time.Now().UTC()
	s.items[pos] = item.Clone()
	return nil
}

// NextPending returns the first pending item in insertion order, or false
// when the queue has none.
func (s *Store) NextPending() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Status == StatusPending {
			return item.Clone(), true
		}
	}
	return Item{}, false
}

// NaturalKeys returns the set of natural keys currently present, used by the
// import merger for deduplication.
func (s *Store) NaturalKeys() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make(map[string]struct{}, len(s.items))
	for _, item := range s.items {
		keys[item.SourceRef.NaturalKey(item.DisplayName)] = struct{}{}
	}
	return keys
}

// RetryFailed moves failed items back to pending for reprocessing. With no
// IDs, every failed item is reset; otherwise only the listed ones.
func (s *Store) RetryFailed(ids ...string) int {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	now := time.Now().UTC()
	for pos := range s.items {
		item := &s.items[pos]
		if item.Status != StatusFailed {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[item.ID]; !ok {
				continue
			}
		}
		item.Status = StatusPending
		item.StatusMessage = ""
		item.ErrorMessage = ""
		item.Results = nil
		item.UpdatedAt = now
		count++
	}
	return count
}

// Remove deletes an item by identifier.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("remove item %s: %w", id, ErrNotFound)
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	s.reindex()
	return nil
}

// Clear removes every item and returns how many were dropped.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.items)
	s.items = nil
	s.index = make(map[string]int)
	return count
}

// Stats aggregates current queue counts per lifecycle state.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{Total: len(s.items)}
	for _, item := range s.items {
		switch item.Status {
		case StatusPending:
			stats.Pending++
		case StatusAnalyzing:
			stats.Analyzing++
		case StatusCompleted:
			stats.Completed++
		case StatusReview:
			stats.Review++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for pos, item := range s.items {
		s.index[item.ID] = pos
	}
}

// SortedStatuses returns the distinct statuses currently present, ordered by
// the lifecycle enum, for presentation layers.
func (s *Store) SortedStatuses() []Status {
	present := make(map[Status]struct{})
	s.mu.Lock()
	for _, item := range s.items {
		present[item.Status] = struct{}{}
	}
	s.mu.Unlock()

	order := make(map[Status]int, len(allStatuses))
	for pos, status := range allStatuses {
		order[status] = pos
	}
	out := make([]Status, 0, len(present))
	for status := range present {
		out = append(out, status)
	}
	sort.Slice(out, func(a, b int) bool { return order[out[a]] < order[out[b]] })
	return out
}
