// Package daemon runs watch mode: a single locked process that periodically
// merges the configured source into the queue and drains it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"mailroom/internal/engine"
	"mailroom/internal/importer"
	"mailroom/internal/logging"
	"mailroom/internal/queue"
	"mailroom/internal/storage"
)

// Daemon owns the poll-merge-drain loop and enforces single-instance
// execution through a lock file.
type Daemon struct {
	store    *queue.Store
	engine   *engine.Engine
	source   storage.Source
	kind     queue.SourceKind
	location string
	logger   *slog.Logger

	pollInterval time.Duration
	lockPath     string
	lock         *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Config wires the daemon's collaborators.
type Config struct {
	Store        *queue.Store
	Engine       *engine.Engine
	Source       storage.Source
	Kind         queue.SourceKind
	Location     string
	Logger       *slog.Logger
	PollInterval time.Duration
	LockDir      string
}

// New constructs a stopped daemon.
func New(cfg Config) (*Daemon, error) {
	if cfg.Store == nil || cfg.Engine == nil || cfg.Source == nil {
		return nil, errors.New("daemon requires store, engine, and source")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	lockPath := filepath.Join(cfg.LockDir, "mailroom.lock")
	return &Daemon{
		store:        cfg.Store,
		engine:       cfg.Engine,
		source:       cfg.Source,
		kind:         cfg.Kind,
		location:     cfg.Location,
		logger:       logger.With(logging.String(logging.FieldComponent, "daemon")),
		pollInterval: pollInterval,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}, nil
}

// LockPath returns the lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Running reports whether the watch loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Start acquires the instance lock and launches the watch loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mailroom instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(1)
	go d.watch(runCtx)

	d.logger.Info("watch started",
		logging.String("lock", d.lockPath),
		logging.Duration("poll_interval", d.pollInterval),
	)
	return nil
}

// Stop terminates the watch loop, waits for the current drain to finish,
// and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("watch stopped")
}

func (d *Daemon) watch(ctx context.Context) {
	defer d.wg.Done()

	d.poll(ctx)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.poll(ctx)
		}
	}
}

// poll merges the source listing and drains any pending work synchronously,
// so at most one drain runs per daemon.
func (d *Daemon) poll(ctx context.Context) {
	result, err := importer.Sync(ctx, d.source, d.location, d.kind, d.store)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.logger.Error("source poll failed", logging.Error(err))
		return
	}
	if len(result.Added) > 0 {
		d.logger.Info("new documents queued", logging.Int("count", len(result.Added)))
	}
	d.engine.Run(ctx)
}
