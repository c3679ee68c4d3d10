package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/config"
	"github.com/hpungsan/masscalc/internal/db"
	"github.com/hpungsan/masscalc/internal/ops"
	"github.com/hpungsan/masscalc/internal/remote"
	"github.com/hpungsan/masscalc/internal/service"
	"github.com/hpungsan/masscalc/internal/session"
)

// env carries the process-wide dependencies shared by every command.
type env struct {
	cfg    *config.Config
	svc    service.Service
	sink   ops.Sink
	logger *zap.Logger
}

// newLogger builds a JSON logger on stderr so stdout stays free for
// command output and the MCP transport.
func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
		}
		zcfg.Level = lvl
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// newEnv opens the local database when needed and assembles the service
// and export sink selected by cfg. The returned cleanup closes the database.
func newEnv(ctx context.Context, baseDir string, cfg *config.Config, logger *zap.Logger) (*env, func(), error) {
	var database *sql.DB
	if cfg.Persistence != config.PersistenceRemote {
		var err error
		database, err = db.Init(baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db.ConfigurePool(database, cfg)
	}

	cleanup := func() {
		if database != nil {
			database.Close()
			database = nil
		}
	}

	svc, err := buildService(cfg, database, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sink, err := buildSink(ctx, baseDir, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &env{cfg: cfg, svc: svc, sink: sink, logger: logger}, cleanup, nil
}

// buildService combines the remote computation service (if configured) with
// either local or remote persistence.
func buildService(cfg *config.Config, database *sql.DB, logger *zap.Logger) (service.Service, error) {
	var client *remote.Client
	if cfg.ServiceURL != "" {
		timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
		client = remote.New(cfg.ServiceURL, timeout, logger.Named("remote"))
	}

	composite := &service.Composite{
		FormulaParser:   service.Unavailable{},
		Solver:          service.Unavailable{},
		SettingsService: service.Unavailable{},
		ElementsService: service.Unavailable{},
		Exporter:        service.Unavailable{},
	}
	if client != nil {
		composite.FormulaParser = client
		composite.Solver = client
		composite.Exporter = client
	}

	switch cfg.Persistence {
	case config.PersistenceRemote:
		if client == nil {
			return nil, fmt.Errorf("persistence %q requires service_url", config.PersistenceRemote)
		}
		composite.SettingsService = client
		composite.ElementsService = client
	default:
		backend := db.NewBackend(database, logger.Named("db"))
		composite.SettingsService = backend
		composite.ElementsService = backend
	}
	return composite, nil
}

// buildSink returns an S3 sink when export_bucket is set and a directory
// sink otherwise.
func buildSink(ctx context.Context, baseDir string, cfg *config.Config) (ops.Sink, error) {
	if cfg.ExportBucket != "" {
		sink, err := ops.NewS3Sink(ctx, cfg.ExportBucket, cfg.ExportPrefix)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	dir := cfg.ExportDir
	if dir == "" {
		dir = filepath.Join(baseDir, "exports")
	}
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid export_dir %q: %w", dir, err)
		}
		dir = abs
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return ops.NewFileSink(dir, cfg), nil
}

// newSession creates and starts a session over the environment's service.
func (e *env) newSession(ctx context.Context, opts session.StartOptions) (*session.Session, error) {
	sess := session.New(e.svc, e.sink, e.logger.Named("session"))
	if err := sess.Start(ctx, opts); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}
