package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mailroom/internal/catalog"
	"mailroom/internal/config"
	"mailroom/internal/engine"
	"mailroom/internal/extraction"
	"mailroom/internal/logging"
	"mailroom/internal/queue"
	"mailroom/internal/storage"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// buildSource picks the configured document source: the remote service when
// enabled, the local inbox directory otherwise.
func (c *commandContext) buildSource(cfg *config.Config) (storage.Source, queue.SourceKind, string, error) {
	if cfg.Remote.Enabled {
		source, err := storage.NewRemoteSource(cfg.Remote.BaseURL, cfg.Remote.Token,
			storage.WithTimeout(time.Duration(cfg.Remote.RequestTimeout)*time.Second))
		if err != nil {
			return nil, "", "", err
		}
		return source, queue.SourceRemote, cfg.Remote.Location, nil
	}
	source, err := storage.NewLocalSource(cfg.Paths.InboxDir)
	if err != nil {
		return nil, "", "", err
	}
	return source, queue.SourceLocal, "", nil
}

func (c *commandContext) buildClient(cfg *config.Config) (extraction.Client, error) {
	return extraction.NewAnthropicClient(extraction.Config{
		APIKey:         cfg.Extraction.APIKey,
		Model:          cfg.Extraction.Model,
		MaxAttempts:    cfg.Extraction.MaxAttempts,
		RetryBaseDelay: time.Duration(cfg.Extraction.RetryBaseDelayMS) * time.Millisecond,
		RetryMaxDelay:  time.Duration(cfg.Extraction.RetryMaxDelayMS) * time.Millisecond,
		Timeout:        time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
	})
}

// openCatalog opens the results archive, or returns nil when disabled.
func (c *commandContext) openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if !cfg.Catalog.Enabled {
		return nil, nil
	}
	archive, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return archive, nil
}

// requireCatalog opens the archive and fails when the configuration has it
// disabled.
func (c *commandContext) requireCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	archive, err := c.openCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return nil, fmt.Errorf("the results catalog is disabled; enable [catalog] in the configuration")
	}
	return archive, nil
}

type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *queue.Store
	source  storage.Source
	kind    queue.SourceKind
	loc     string
	engine  *engine.Engine
	archive *catalog.Catalog
}

// buildSession assembles the full processing pipeline for run and watch.
func (c *commandContext) buildSession(cfg *config.Config) (*session, error) {
	logger, err := c.buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	source, kind, location, err := c.buildSource(cfg)
	if err != nil {
		return nil, err
	}
	client, err := c.buildClient(cfg)
	if err != nil {
		return nil, err
	}
	archive, err := c.openCatalog(cfg)
	if err != nil {
		return nil, err
	}

	store := queue.NewStore()
	sources := map[queue.SourceKind]storage.Source{kind: source}

	var recorder engine.Recorder
	if archive != nil {
		recorder = archive
	}
	eng, err := engine.New(engine.Config{
		Store:    store,
		Client:   client,
		Sources:  sources,
		Recorder: recorder,
		Logger:   logger,
		Pacing:   time.Duration(cfg.Engine.PacingSeconds) * time.Second,
	})
	if err != nil {
		if archive != nil {
			_ = archive.Close()
		}
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		source:  source,
		kind:    kind,
		loc:     location,
		engine:  eng,
		archive: archive,
	}, nil
}

func (s *session) Close() {
	if s.archive != nil {
		_ = s.archive.Close()
	}
}
