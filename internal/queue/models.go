package queue

import (
	"strings"
	"time"

	"mailroom/internal/classify"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusReview    Status = "review"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusCompleted,
	StatusReview,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether a status ends engine processing for an item.
// Failed is terminal too: it only re-enters the cycle through an explicit
// retry that resets the item to pending.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusReview, StatusFailed:
		return true
	default:
		return false
	}
}

// SourceKind distinguishes where an item's bytes live.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceRemote SourceKind = "remote"
)

// SourceRef locates the binary content of a work item. Exactly one of
// LocalPath or RemoteID is populated, per Kind.
type SourceRef struct {
	Kind      SourceKind
	LocalPath string
	RemoteID  string
	MimeHint  string
}

// NaturalKey is the deduplication key used by the import merger: the remote
// file identifier for remote sources, the display name for local ones.
func (r SourceRef) NaturalKey(displayName string) string {
	if r.Kind == SourceRemote {
		return r.RemoteID
	}
	return displayName
}

// AnalysisResult is one logical mail piece extracted from a work item,
// carrying the raw extraction fields plus everything the mapper and
// reconciler derived from them.
type AnalysisResult struct {
	classify.RawRecord

	Routing           classify.Routing
	Classification    classify.Classification
	CanonicalID       string
	GeneratedID       bool
	SuggestedFilename string
}

// Item represents one uploaded or imported artifact awaiting or having
// completed analysis.
type Item struct {
	ID          string
	SourceRef   SourceRef
	DisplayName string
	Status      Status

	// StatusMessage is a transient progress annotation, overwritten on every
	// phase transition and cleared on terminal states.
	StatusMessage string

	// Results is set only on completed/review items; ErrorMessage only on
	// failed ones. Never both.
	Results      []AnalysisResult
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetAnalyzing moves the item into the in-flight state with a progress note.
func (i *Item) SetAnalyzing(message string) {
	i.Status = StatusAnalyzing
	i.StatusMessage = message
	i.Results = nil
	i.ErrorMessage = ""
}

// SetResults records a successful analysis. Any undetermined record taints
// the whole item into review.
func (i *Item) SetResults(results []AnalysisResult) {
	status := StatusCompleted
	for _, result := range results {
		if result.Classification == classify.Undetermined {
			status = StatusReview
			break
		}
	}
	i.Status = status
	i.Results = results
	i.StatusMessage = ""
	i.ErrorMessage = ""
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.StatusMessage = ""
	i.Results = nil
}

// Clone returns a deep copy so callers never share mutable state with the
// store.
func (i Item) Clone() Item {
	cp := i
	if i.Results != nil {
		cp.Results = make([]AnalysisResult, len(i.Results))
		copy(cp.Results, i.Results)
	}
	return cp
}

// Stats aggregates queue counts per lifecycle state.
type Stats struct {
	Total     int
	Pending   int
	Analyzing int
	Completed int
	Review    int
	Failed    int
}
