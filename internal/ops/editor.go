package ops

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
)

// ElementRow is one editable atomic-mass row. AtomicMass holds the text as
// typed and is parsed only when saving.
type ElementRow struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	AtomicMass string `json:"atomic_mass"`
}

// ErrorReporter receives human-readable failure messages.
type ErrorReporter interface {
	UpdateError(msg string)
}

// Editor is a session-local atomic-mass table. It has no error slot of its
// own and reports failures through an ErrorReporter (the elements store).
type Editor struct {
	svc    service.ElementsService
	errs   ErrorReporter
	logger *zap.Logger

	mu   sync.RWMutex
	rows []ElementRow
}

// NewEditor creates an empty editor.
func NewEditor(svc service.ElementsService, errs ErrorReporter, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{svc: svc, errs: errs, logger: logger}
}

// Rows returns a copy of the current rows.
func (e *Editor) Rows() []ElementRow {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]ElementRow(nil), e.rows...)
}

// Load fetches all rows. On failure previously loaded rows are kept.
func (e *Editor) Load(ctx context.Context) {
	elements, err := e.svc.GetElements(ctx)
	if err != nil {
		e.fail("load", "Failed to load elements. Details: %s", err)
		return
	}
	e.setRows(elements)
}

// UpdateRow overwrites the atomic-mass text of one row.
func (e *Editor) UpdateRow(index int, atomicMass string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.rows) {
		return
	}
	e.rows[index].AtomicMass = atomicMass
}

// IndexOf returns the index of the row with the given symbol, or -1.
// Symbols compare case-sensitively, as in chemical notation.
func (e *Editor) IndexOf(symbol string) int {
	symbol = strings.TrimSpace(symbol)
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i, r := range e.rows {
		if r.Symbol == symbol {
			return i
		}
	}
	return -1
}

// Save parses every row and submits the full table. If any row is not a
// finite number nothing is sent and a single validation error is reported.
// On success the rows are replaced by the service's echo.
func (e *Editor) Save(ctx context.Context) {
	rows := e.Rows()

	elements, invalid := ParseRows(rows)
	if len(invalid) > 0 {
		e.logger.Info("atomic mass validation failed", zap.Strings("symbols", invalid))
		e.errs.UpdateError(errors.NewInvalidAtomicMass(invalid).Message)
		return
	}

	saved, err := e.svc.SaveElements(ctx, elements)
	if err != nil {
		e.fail("save", "Failed to save elements. Details: %s", err)
		return
	}
	e.setRows(saved)
}

// Restore replaces the rows with the service's reference values, discarding
// unsaved edits.
func (e *Editor) Restore(ctx context.Context) {
	restored, err := e.svc.RestoreElements(ctx)
	if err != nil {
		e.fail("restore", "Failed to restore elements. Details: %s", err)
		return
	}
	e.setRows(restored)
}

// ParseRows converts rows to elements and returns the symbols whose
// atomic-mass text is not a finite number.
func ParseRows(rows []ElementRow) ([]chem.Element, []string) {
	elements := make([]chem.Element, 0, len(rows))
	var invalid []string
	for _, r := range rows {
		mass, err := strconv.ParseFloat(strings.TrimSpace(r.AtomicMass), 64)
		if err != nil || math.IsNaN(mass) || math.IsInf(mass, 0) {
			invalid = append(invalid, r.Symbol)
			continue
		}
		elements = append(elements, chem.Element{Name: r.Name, Symbol: r.Symbol, AtomicMass: mass})
	}
	return elements, invalid
}

// FormatMass renders an atomic mass the way it is shown for editing:
// shortest representation, no exponent for ordinary values.
func FormatMass(mass float64) string {
	return strconv.FormatFloat(mass, 'f', -1, 64)
}

func (e *Editor) setRows(elements []chem.Element) {
	rows := make([]ElementRow, len(elements))
	for i, el := range elements {
		rows[i] = ElementRow{Name: el.Name, Symbol: el.Symbol, AtomicMass: FormatMass(el.AtomicMass)}
	}
	e.mu.Lock()
	e.rows = rows
	e.mu.Unlock()
}

func (e *Editor) fail(op, format string, err error) {
	e.logger.Warn("elements "+op+" failed", zap.Error(err))
	e.errs.UpdateError(fmt.Sprintf(format, errors.Detail(err)))
}
