package ops

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/store"
)

func newAutoFillFixture(t *testing.T, autoFill bool) (*store.ElementsStore, *store.SettingsStore, *fakeParser, *AutoFill) {
	t.Helper()
	return newLoggedAutoFillFixture(t, autoFill, nil)
}

func newLoggedAutoFillFixture(t *testing.T, autoFill bool, logger *zap.Logger) (*store.ElementsStore, *store.SettingsStore, *fakeParser, *AutoFill) {
	t.Helper()
	p := chem.DefaultSettings()
	p.AutoFillStartingMaterials = autoFill

	elements := store.NewElementsStore()
	settings := store.NewSettingsStore(newFakeSettings(p), nil)
	require.NoError(t, settings.Load(context.Background()))

	parser := newFakeParser()
	af := NewAutoFill(elements, settings, parser, logger)
	af.Start(context.Background())
	t.Cleanup(af.Stop)
	return elements, settings, parser, af
}

func TestAutoFill_ReplacesStartingMaterials(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)
	parser.results["H2O"] = []string{"H", "O"}

	elements.UpdateTargetFormula("H2O")
	af.Wait()

	st := elements.Snapshot()
	require.Equal(t, []string{"H", "O"}, st.StartingMaterials)
	require.Empty(t, st.Error)
	require.Equal(t, []string{"H2O"}, parser.Calls())
}

func TestAutoFill_TrimsFormula(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)
	parser.results["NaCl"] = []string{"Na", "Cl"}

	elements.UpdateTargetFormula("  NaCl ")
	af.Wait()

	require.Equal(t, []string{"NaCl"}, parser.Calls())
	require.Equal(t, []string{"Na", "Cl"}, elements.Snapshot().StartingMaterials)
}

func TestAutoFill_BlankFormulaDoesNotParse(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)

	elements.UpdateTargetFormula("   ")
	af.Wait()

	require.Empty(t, parser.Calls())
	require.Equal(t, []string{"", ""}, elements.Snapshot().StartingMaterials)
}

func TestAutoFill_DisabledDoesNotParse(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, false)
	parser.results["H2O"] = []string{"H", "O"}

	elements.UpdateTargetFormula("H2O")
	af.Wait()

	require.Empty(t, parser.Calls())
	require.Equal(t, []string{"", ""}, elements.Snapshot().StartingMaterials)
}

func TestAutoFill_EnablingParsesCurrentFormula(t *testing.T) {
	elements, settings, parser, af := newAutoFillFixture(t, false)
	parser.results["H2O"] = []string{"H", "O"}

	elements.UpdateTargetFormula("H2O")
	af.Wait()
	require.Empty(t, parser.Calls())

	on := true
	require.NoError(t, settings.Update(context.Background(), store.SettingsOverride{AutoFillStartingMaterials: &on}))
	af.Wait()

	require.Equal(t, []string{"H2O"}, parser.Calls())
	require.Equal(t, []string{"H", "O"}, elements.Snapshot().StartingMaterials)
}

func TestAutoFill_UnrelatedSettingDoesNotReparse(t *testing.T) {
	elements, settings, parser, af := newAutoFillFixture(t, true)
	parser.results["H2O"] = []string{"H", "O"}

	elements.UpdateTargetFormula("H2O")
	af.Wait()

	dark := chem.ThemeDark
	require.NoError(t, settings.Update(context.Background(), store.SettingsOverride{ThemeMode: &dark}))
	af.Wait()

	require.Equal(t, []string{"H2O"}, parser.Calls())
}

func TestAutoFill_ParseErrorGoesToErrorSlot(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)
	parser.errs["Xx2"] = errors.New("unknown element Xx")

	elements.UpdateTargetFormula("Xx2")
	af.Wait()

	st := elements.Snapshot()
	require.Equal(t, "Error parsing formula unknown element Xx", st.Error)
	require.Equal(t, []string{"", ""}, st.StartingMaterials)
}

func TestAutoFill_EmptyParseLeavesMaterials(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)
	elements.UpdateStartingMaterial(0, "Fe2O3")
	parser.results["()"] = []string{}

	elements.UpdateTargetFormula("()")
	af.Wait()

	require.Equal(t, []string{"Fe2O3", ""}, elements.Snapshot().StartingMaterials)
}

func TestAutoFill_StaleParseDiscarded(t *testing.T) {
	tests := []struct {
		name       string
		staleFirst bool
	}{
		{"stale resolves last", false},
		{"stale resolves first", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			elements, _, parser, af := newAutoFillFixture(t, true)
			parser.results["H2O"] = []string{"H", "O"}
			parser.results["CO2"] = []string{"C", "O"}
			releaseWater := parser.gate("H2O")
			releaseCarbon := parser.gate("CO2")

			elements.UpdateTargetFormula("H2O")
			elements.UpdateTargetFormula("CO2")

			if tc.staleFirst {
				releaseWater()
				releaseCarbon()
			} else {
				releaseCarbon()
				releaseWater()
			}
			af.Wait()

			require.Equal(t, []string{"C", "O"}, elements.Snapshot().StartingMaterials)
		})
	}
}

func TestAutoFill_StaleParseErrorDiscarded(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)
	parser.errs["Xx"] = errors.New("unknown element Xx")
	parser.results["CO2"] = []string{"C", "O"}
	release := parser.gate("Xx")

	elements.UpdateTargetFormula("Xx")
	elements.UpdateTargetFormula("CO2")
	release()
	af.Wait()

	st := elements.Snapshot()
	require.Empty(t, st.Error)
	require.Equal(t, []string{"C", "O"}, st.StartingMaterials)
}

func TestAutoFill_StopDiscardsInFlightParse(t *testing.T) {
	elements, _, parser, af := newAutoFillFixture(t, true)
	parser.results["H2O"] = []string{"H", "O"}
	release := parser.gate("H2O")

	elements.UpdateTargetFormula("H2O")
	af.Stop()
	release()

	require.Equal(t, []string{"", ""}, elements.Snapshot().StartingMaterials)

	// No further activations after Stop.
	elements.UpdateTargetFormula("CO2")
	require.Equal(t, []string{"H2O"}, parser.Calls())
}

func TestAutoFill_DisablingDiscardsInFlightParse(t *testing.T) {
	elements, settings, parser, af := newAutoFillFixture(t, true)
	parser.results["H2O"] = []string{"H", "O"}
	release := parser.gate("H2O")

	elements.UpdateTargetFormula("H2O")
	off := false
	require.NoError(t, settings.Update(context.Background(), store.SettingsOverride{AutoFillStartingMaterials: &off}))
	release()
	af.Wait()

	st := elements.Snapshot()
	require.Equal(t, []string{"", ""}, st.StartingMaterials)
	require.Empty(t, st.Error)
	require.Equal(t, []string{"H2O"}, parser.Calls())
}

// Disabling auto-fill between the staleness check and the store write must
// still keep the failed parse out of the error slot.
func TestAutoFill_DisablingDuringWriteDiscardsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var settings *store.SettingsStore
	var once sync.Once
	logger := zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		if e.Message != "parse formula failed" {
			return nil
		}
		once.Do(func() {
			off := false
			_ = settings.Update(context.Background(), store.SettingsOverride{AutoFillStartingMaterials: &off})
		})
		return nil
	}))

	elements, s, parser, af := newLoggedAutoFillFixture(t, true, logger)
	settings = s
	parser.errs["Xx"] = errors.New("unknown element Xx")

	elements.UpdateTargetFormula("Xx")
	af.Wait()

	require.Empty(t, elements.Snapshot().Error)
	require.False(t, settings.Snapshot().AutoFillStartingMaterials)
	require.Equal(t, 1, logs.FilterMessage("parse superseded before it applied").Len())
}
