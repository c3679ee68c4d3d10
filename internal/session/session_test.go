package session

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/db"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
	"github.com/hpungsan/masscalc/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubParser map[string][]string

func (p stubParser) ParseFormula(_ context.Context, formula string) ([]string, error) {
	if els, ok := p[formula]; ok {
		return els, nil
	}
	return nil, stderrors.New("unknown formula " + formula)
}

type stubSolver struct {
	last chem.CalculationRequest
}

func (s *stubSolver) Calculate(_ context.Context, req chem.CalculationRequest) (*chem.CalculationResult, error) {
	s.last = req
	return &chem.CalculationResult{
		TargetFormula: req.TargetFormula,
		MolarMass:     18.015,
		Reagents:      []chem.ReagentResult{{Reagent: "H2", Moles: 1, MolarMass: 2.016, Mass: 2.016}},
		Explanation:   []string{"balanced"},
	}, nil
}

type stubExporter struct{}

func (stubExporter) Export(_ context.Context, format chem.ExportFormat, _ chem.CalculationResult) (*service.Document, error) {
	return &service.Document{Name: "x" + format.Extension(), Data: []byte("doc")}, nil
}

type nopSink struct{ n int }

func (s *nopSink) Write(_ context.Context, doc *service.Document) (string, error) {
	s.n++
	return "mem://" + doc.Name, nil
}

type failingSettings struct{}

func (failingSettings) GetSettings(context.Context) (chem.SettingsPayload, error) {
	return chem.SettingsPayload{}, stderrors.New("settings offline")
}

func (failingSettings) SaveSettings(context.Context, chem.SettingsPayload) (chem.SettingsPayload, error) {
	return chem.SettingsPayload{}, stderrors.New("settings offline")
}

func newTestSession(t *testing.T) (*Session, *stubSolver, *db.Backend) {
	t.Helper()
	sqlDB, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	backend := db.NewBackend(sqlDB, nil)

	solver := &stubSolver{}
	svc := &service.Composite{
		FormulaParser:   stubParser{"H2O": {"H", "O"}},
		Solver:          solver,
		SettingsService: backend,
		ElementsService: backend,
		Exporter:        stubExporter{},
	}
	s := New(svc, &nopSink{}, nil)
	t.Cleanup(s.Close)
	return s, solver, backend
}

func TestSession_StartLoadsSettingsAndElements(t *testing.T) {
	s, _, backend := newTestSession(t)
	ctx := context.Background()

	_, err := backend.SaveSettings(ctx, chem.SettingsPayload{
		ThemeMode: chem.ThemeDark, DetailedReport: true, AutoFillStartingMaterials: false, ExportFormat: chem.ExportExcel,
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(ctx, StartOptions{LoadElements: true}))

	st := s.Settings.Snapshot()
	require.Equal(t, chem.ThemeDark, st.ThemeMode)
	require.False(t, st.AutoFillStartingMaterials)
	require.Len(t, s.Editor.Rows(), 118)
}

func TestSession_StartSettingsFailure(t *testing.T) {
	svc := &service.Composite{
		FormulaParser:   stubParser{},
		Solver:          &stubSolver{},
		SettingsService: failingSettings{},
		ElementsService: service.Unavailable{},
		Exporter:        stubExporter{},
	}
	s := New(svc, &nopSink{}, nil)
	defer s.Close()

	err := s.Start(context.Background(), StartOptions{})
	require.EqualError(t, err, "settings offline")
	require.Equal(t, chem.DefaultSettings(), s.Settings.Snapshot().Payload())
}

func TestSession_AutoFillCalculateReport(t *testing.T) {
	s, solver, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, StartOptions{}))

	s.Elements.UpdateTargetFormula("H2O")
	s.Settle()
	require.Equal(t, []string{"H", "O"}, s.Elements.Snapshot().StartingMaterials)

	s.Elements.UpdateTargetMass("18")
	s.Elements.SetStartingMaterials([]string{"H2", "O2"})
	s.Calculator.Calculate(ctx)
	require.Equal(t, []string{"H2", "O2"}, solver.last.StartingMaterials)

	md, err := s.Report(false)
	require.NoError(t, err)
	require.Contains(t, md, "| H2 |")
	require.NotContains(t, md, "## Explanation")

	on := true
	require.NoError(t, s.Settings.Update(ctx, store.SettingsOverride{DetailedReport: &on}))
	html, err := s.Report(true)
	require.NoError(t, err)
	require.Contains(t, html, "<h2>Explanation</h2>")

	out, err := s.Export.Export(ctx)
	require.NoError(t, err)
	require.Equal(t, chem.ExportPDF, out.Format)
}

func TestSession_ReportWithoutResults(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Report(false)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background(), StartOptions{}))
	s.Close()
	s.Close()
}

func TestSession_StateViews(t *testing.T) {
	s, _, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background(), StartOptions{}))

	st := s.State()
	require.Equal(t, []string{"", ""}, st.StartingMaterials)
	require.Nil(t, st.Results)

	ed := s.EditorState()
	require.NotNil(t, ed.Rows)
	require.Empty(t, ed.Rows)

	s.Elements.UpdateError("boom")
	require.Equal(t, "boom", s.EditorState().Error)
}
