package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
)

// Backend serves the settings and atomic-mass operations from the local
// database. Every save returns what was actually stored.
type Backend struct {
	db     *sql.DB
	logger *zap.Logger
}

var (
	_ service.SettingsService = (*Backend)(nil)
	_ service.ElementsService = (*Backend)(nil)
)

// NewBackend wraps an initialized database.
func NewBackend(db *sql.DB, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{db: db, logger: logger}
}

// GetSettings returns the stored preferences, or the defaults if none were saved.
func (b *Backend) GetSettings(ctx context.Context) (chem.SettingsPayload, error) {
	p, found, err := GetSettings(ctx, b.db)
	if err != nil {
		return chem.SettingsPayload{}, err
	}
	if !found {
		return chem.DefaultSettings(), nil
	}
	return chem.NormalizeSettings(p), nil
}

// SaveSettings normalizes and stores the full payload.
func (b *Backend) SaveSettings(ctx context.Context, payload chem.SettingsPayload) (chem.SettingsPayload, error) {
	payload = chem.NormalizeSettings(payload)
	if err := UpsertSettings(ctx, b.db, payload); err != nil {
		return chem.SettingsPayload{}, err
	}
	b.logger.Debug("settings saved",
		zap.String("theme_mode", string(payload.ThemeMode)),
		zap.String("export_format", string(payload.ExportFormat)))
	return payload, nil
}

// GetElements returns the atomic-mass table, seeding it with the reference
// values the first time it is read.
func (b *Backend) GetElements(ctx context.Context) ([]chem.Element, error) {
	n, err := CountElements(ctx, b.db)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		b.logger.Info("seeding atomic-mass table")
		if err := ReplaceElements(ctx, b.db, chem.ReferenceElements()); err != nil {
			return nil, err
		}
	}
	return ListElements(ctx, b.db)
}

// SaveElements validates and replaces the whole table.
func (b *Backend) SaveElements(ctx context.Context, elements []chem.Element) ([]chem.Element, error) {
	clean, err := normalizeElements(elements)
	if err != nil {
		return nil, err
	}
	if err := ReplaceElements(ctx, b.db, clean); err != nil {
		return nil, err
	}
	b.logger.Debug("elements saved", zap.Int("count", len(clean)))
	return ListElements(ctx, b.db)
}

// RestoreElements rewrites the table with the reference values.
func (b *Backend) RestoreElements(ctx context.Context) ([]chem.Element, error) {
	if err := ReplaceElements(ctx, b.db, chem.ReferenceElements()); err != nil {
		return nil, err
	}
	b.logger.Info("atomic-mass table restored")
	return ListElements(ctx, b.db)
}

// normalizeElements trims names and symbols and rejects rows that cannot be
// stored: empty symbols and masses that are not finite and positive.
func normalizeElements(elements []chem.Element) ([]chem.Element, error) {
	if len(elements) == 0 {
		return nil, errors.NewInvalidRequest("elements must not be empty")
	}
	out := make([]chem.Element, len(elements))
	for i, el := range elements {
		el.Name = strings.TrimSpace(el.Name)
		el.Symbol = strings.TrimSpace(el.Symbol)
		if el.Symbol == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("element %d: symbol is required", i))
		}
		if math.IsNaN(el.AtomicMass) || math.IsInf(el.AtomicMass, 0) || el.AtomicMass <= 0 {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("element %s: atomic mass must be a positive number", el.Symbol))
		}
		out[i] = el
	}
	return out, nil
}
