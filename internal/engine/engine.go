// Package engine drains the work queue one item at a time: resolve bytes,
// analyze, classify, reconcile, record. Concurrency of one is the contract,
// not a limitation; the upstream document service is rate limited.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mailroom/internal/classify"
	"mailroom/internal/extraction"
	"mailroom/internal/logging"
	"mailroom/internal/queue"
	"mailroom/internal/refid"
	"mailroom/internal/services"
	"mailroom/internal/storage"
)

const defaultPacing = 8 * time.Second

// Recorder receives terminal items for archival. The catalog implements it;
// a nil recorder disables archival.
type Recorder interface {
	Record(ctx context.Context, item queue.Item) error
}

// Config wires the engine's collaborators.
type Config struct {
	Store    *queue.Store
	Client   extraction.Client
	Sources  map[queue.SourceKind]storage.Source
	Recorder Recorder
	Logger   *slog.Logger
	Pacing   time.Duration
}

// Engine owns the single processing loop over pending queue items.
type Engine struct {
	store    *queue.Store
	client   extraction.Client
	sources  map[queue.SourceKind]storage.Source
	recorder Recorder
	logger   *slog.Logger
	pacing   time.Duration
	sleep    func(ctx context.Context, d time.Duration)

	mu     sync.Mutex
	active bool
}

// Option customizes engine behavior.
type Option func(*Engine)

// WithSleeper overrides the pacing sleep (used in tests).
func WithSleeper(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// New constructs an idle engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine: queue store required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("engine: extraction client required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	pacing := cfg.Pacing
	if pacing <= 0 {
		pacing = defaultPacing
	}
	engine := &Engine{
		store:    cfg.Store,
		client:   cfg.Client,
		sources:  cfg.Sources,
		recorder: cfg.Recorder,
		logger:   logger.With(logging.String(logging.FieldComponent, "engine")),
		pacing:   pacing,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Active reports whether a drain loop is currently executing.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Run drains every pending item to a terminal state, first in first out.
// A second call while a loop is active returns immediately; the running
// loop picks up any items inserted in the meantime.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return
	}
	e.active = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active = false
		e.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := e.store.NextPending()
		if !ok {
			return
		}
		e.processItem(ctx, item)
		if ctx.Err() != nil {
			return
		}
		e.sleep(ctx, e.pacing)
	}
}

// Kick starts a drain loop in the background when none is active. Safe to
// call after every insertion.
func (e *Engine) Kick(ctx context.Context) {
	go e.Run(ctx)
}

func (e *Engine) processItem(ctx context.Context, item queue.Item) {
	ctx = services.WithItemID(ctx, item.ID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("analysis started", logging.String("display_name", item.DisplayName))

	item.SetAnalyzing("Preparing…")
	if err := e.store.Update(item); err != nil {
		logger.Error("queue update failed", logging.Error(err))
		return
	}

	content, mimeType, err := e.resolveContent(ctx, item)
	if err != nil {
		e.fail(logger, item, fmt.Sprintf("could not read document: %v", err))
		return
	}

	onProgress := func(message string) {
		item.StatusMessage = message
		if err := e.store.Update(item); err != nil {
			logger.Warn("progress update failed", logging.Error(err))
		}
	}

	records, err := e.client.Analyze(ctx, content, mimeType, extraction.Metadata{DisplayName: item.DisplayName}, onProgress)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.fail(logger, item, err.Error())
		return
	}

	results := make([]queue.AnalysisResult, 0, len(records))
	for _, record := range records {
		results = append(results, deriveResult(record, item.DisplayName))
	}
	item.SetResults(results)
	if err := e.store.Update(item); err != nil {
		logger.Error("queue update failed", logging.Error(err))
		return
	}
	logger.Info("analysis finished",
		logging.String("status", string(item.Status)),
		logging.Int("pieces", len(results)),
	)
	e.record(ctx, logger, item)
}

// deriveResult computes every derived field from the raw extraction record.
// Routing is recomputed here rather than trusted from the model so the same
// record always lands in the same bucket.
func deriveResult(record classify.RawRecord, displayName string) queue.AnalysisResult {
	routing := classify.ResolveRouting(record)
	classification := classify.Map(record, routing)
	canonicalID, generated := refid.Reconcile(record.AccountOrReference, displayName)
	return queue.AnalysisResult{
		RawRecord:         record,
		Routing:           routing,
		Classification:    classification,
		CanonicalID:       canonicalID,
		GeneratedID:       generated,
		SuggestedFilename: classify.SuggestedFilename(record, classification),
	}
}

func (e *Engine) resolveContent(ctx context.Context, item queue.Item) ([]byte, string, error) {
	source, ok := e.sources[item.SourceRef.Kind]
	if !ok {
		return nil, "", fmt.Errorf("no storage source for %q", item.SourceRef.Kind)
	}
	id := item.SourceRef.LocalPath
	if item.SourceRef.Kind == queue.SourceRemote {
		id = item.SourceRef.RemoteID
	}
	content, err := source.Fetch(ctx, id)
	if err != nil {
		return nil, "", err
	}
	mimeType := item.SourceRef.MimeHint
	if mimeType == "" {
		mimeType = extraction.MimeTypeForPath(item.DisplayName)
	}
	return content, mimeType, nil
}

func (e *Engine) fail(logger *slog.Logger, item queue.Item, message string) {
	item.SetFailed(message)
	if err := e.store.Update(item); err != nil {
		logger.Error("queue update failed", logging.Error(err))
		return
	}
	logger.Error("analysis failed", logging.String("reason", message))
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, item queue.Item) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, item); err != nil {
		logger.Warn("catalog write failed", logging.Error(err))
	}
}
