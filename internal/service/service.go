// Package service declares the remote operations the client consumes.
// Implementations live in internal/remote (HTTP) and internal/db (local SQLite).
package service

import (
	"context"

	"github.com/hpungsan/masscalc/internal/chem"
)

// FormulaParser implements parse-formula: it returns the ordered, unique
// element symbols of a trimmed formula.
type FormulaParser interface {
	ParseFormula(ctx context.Context, formula string) ([]string, error)
}

// Solver implements calculate.
type Solver interface {
	Calculate(ctx context.Context, req chem.CalculationRequest) (*chem.CalculationResult, error)
}

// SettingsService implements get-settings and save-settings.
// SaveSettings returns the normalized payload the service actually stored.
type SettingsService interface {
	GetSettings(ctx context.Context) (chem.SettingsPayload, error)
	SaveSettings(ctx context.Context, payload chem.SettingsPayload) (chem.SettingsPayload, error)
}

// ElementsService implements get-elements, save-elements and restore-elements.
type ElementsService interface {
	GetElements(ctx context.Context) ([]chem.Element, error)
	SaveElements(ctx context.Context, elements []chem.Element) ([]chem.Element, error)
	RestoreElements(ctx context.Context) ([]chem.Element, error)
}

// Document is a rendered export ready to be written by a sink.
type Document struct {
	Name        string // suggested file name including extension
	ContentType string
	Data        []byte
}

// Exporter implements export-to-pdf and export-to-excel.
type Exporter interface {
	Export(ctx context.Context, format chem.ExportFormat, result chem.CalculationResult) (*Document, error)
}

// Service bundles every remote operation.
type Service interface {
	FormulaParser
	Solver
	SettingsService
	ElementsService
	Exporter
}

// Composite assembles a Service from independently chosen backends,
// e.g. a remote solver with local persistence.
type Composite struct {
	FormulaParser
	Solver
	SettingsService
	ElementsService
	Exporter
}

var _ Service = (*Composite)(nil)
