package ops

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
	"github.com/hpungsan/masscalc/internal/store"
)

// ExportOutput describes a written export.
type ExportOutput struct {
	Format     chem.ExportFormat `json:"format"`
	Location   string            `json:"location"`
	Bytes      int               `json:"bytes"`
	ExportedAt int64             `json:"exported_at"`
}

// ExportWorkflow renders the current result in the preferred export format
// and hands the document to a Sink. Failures are returned to the caller and
// never written to the error slot.
type ExportWorkflow struct {
	elements *store.ElementsStore
	settings *store.SettingsStore
	exporter service.Exporter
	sink     Sink
	logger   *zap.Logger
}

// NewExportWorkflow creates an ExportWorkflow.
func NewExportWorkflow(elements *store.ElementsStore, settings *store.SettingsStore, exporter service.Exporter, sink Sink, logger *zap.Logger) *ExportWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorkflow{
		elements: elements,
		settings: settings,
		exporter: exporter,
		sink:     sink,
		logger:   logger,
	}
}

// Export writes the last calculation result.
func (x *ExportWorkflow) Export(ctx context.Context) (*ExportOutput, error) {
	results := x.elements.Snapshot().Results
	if results == nil {
		return nil, errors.NewInvalidRequest("no results to export; run a calculation first")
	}
	format := x.settings.Snapshot().ExportFormat

	doc, err := x.exporter.Export(ctx, format, *results)
	if err != nil {
		x.logger.Warn("export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	doc.Name, err = documentName(results.TargetFormula, format, now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	location, err := x.sink.Write(ctx, doc)
	if err != nil {
		x.logger.Warn("export write failed", zap.String("name", doc.Name), zap.Error(err))
		return nil, err
	}

	x.logger.Info("export written",
		zap.String("format", string(format)),
		zap.String("location", location),
		zap.Int("bytes", len(doc.Data)))

	return &ExportOutput{
		Format:     format,
		Location:   location,
		Bytes:      len(doc.Data),
		ExportedAt: now.Unix(),
	}, nil
}

// documentName builds <formula>-<ulid><ext>. The ULID keeps names unique and
// sortable by creation time.
func documentName(formula string, format chem.ExportFormat, now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	base := SanitizeForFilename(strings.TrimSpace(formula))
	return base + "-" + strings.ToLower(id.String()) + format.Extension(), nil
}
