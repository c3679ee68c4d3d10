// Package session wires the stores, the auto-fill effect and the workflows
// that make up one calculator session.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/ops"
	"github.com/hpungsan/masscalc/internal/report"
	"github.com/hpungsan/masscalc/internal/service"
	"github.com/hpungsan/masscalc/internal/store"
)

// StartOptions selects the initial loads run by Start.
type StartOptions struct {
	// LoadElements fetches the atomic-mass table into the editor.
	LoadElements bool
}

// Session owns every piece of calculator state for the life of a process.
type Session struct {
	Elements   *store.ElementsStore
	Settings   *store.SettingsStore
	AutoFill   *ops.AutoFill
	Calculator *ops.Calculator
	Editor     *ops.Editor
	Export     *ops.ExportWorkflow

	logger    *zap.Logger
	closeOnce sync.Once
}

// New builds a session over svc. Exports are written to sink.
func New(svc service.Service, sink ops.Sink, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	elements := store.NewElementsStore()
	settings := store.NewSettingsStore(svc, logger.Named("settings"))

	return &Session{
		Elements:   elements,
		Settings:   settings,
		AutoFill:   ops.NewAutoFill(elements, settings, svc, logger.Named("autofill")),
		Calculator: ops.NewCalculator(elements, svc, logger.Named("calculate")),
		Editor:     ops.NewEditor(svc, elements, logger.Named("editor")),
		Export:     ops.NewExportWorkflow(elements, settings, svc, sink, logger.Named("export")),
		logger:     logger,
	}
}

// Start runs the auto-fill effect and loads the persisted settings (and the
// atomic-mass table if requested) concurrently. A settings failure is
// returned; an elements failure lands in the error slot like any editor load.
func (s *Session) Start(ctx context.Context, opts StartOptions) error {
	s.AutoFill.Start(ctx)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.Settings.Load(egCtx)
	})
	if opts.LoadElements {
		eg.Go(func() error {
			s.Editor.Load(egCtx)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Warn("session start incomplete", zap.Error(err))
		return err
	}

	s.logger.Debug("session started", zap.Bool("elements_loaded", opts.LoadElements))
	return nil
}

// Settle blocks until every auto-fill parse started so far has resolved.
func (s *Session) Settle() {
	s.AutoFill.Wait()
}

// Report renders the last result as Markdown, or HTML when html is set,
// honoring the detailed_report preference.
func (s *Session) Report(html bool) (string, error) {
	results := s.Elements.Snapshot().Results
	if results == nil {
		return "", errors.NewInvalidRequest("no results to report; run a calculation first")
	}
	md := report.Markdown(*results, s.Settings.Snapshot().DetailedReport)
	if !html {
		return md, nil
	}
	out, err := report.HTML(md)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return out, nil
}

// Close stops the auto-fill effect and waits for in-flight parses.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.AutoFill.Stop()
	})
}
