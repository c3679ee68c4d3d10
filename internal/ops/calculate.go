package ops

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/errors"
	"github.com/hpungsan/masscalc/internal/service"
	"github.com/hpungsan/masscalc/internal/store"
)

// Calculator submits the form in the elements store to the solver and writes
// the outcome back into the store.
type Calculator struct {
	elements *store.ElementsStore
	solver   service.Solver
	logger   *zap.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(elements *store.ElementsStore, solver service.Solver, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{elements: elements, solver: solver, logger: logger}
}

// BuildRequest assembles a solver request from the form. Starting materials
// are trimmed and blank ones dropped; formula and mass are sent as typed.
func BuildRequest(st store.FormulaState) chem.CalculationRequest {
	materials := make([]string, 0, len(st.StartingMaterials))
	for _, m := range st.StartingMaterials {
		if m = strings.TrimSpace(m); m != "" {
			materials = append(materials, m)
		}
	}
	return chem.CalculationRequest{
		TargetFormula:     st.TargetFormula,
		TargetMass:        st.TargetMass,
		StartingMaterials: materials,
	}
}

// Calculate clears the error slot, calls the solver, and stores either the
// result or a diagnostic message. It reports nothing to the caller; the
// outcome is observable only through the store.
func (c *Calculator) Calculate(ctx context.Context) {
	req := BuildRequest(c.elements.Snapshot())

	c.elements.ClearError()
	c.logger.Debug("calculate",
		zap.String("target_formula", req.TargetFormula),
		zap.String("target_mass", req.TargetMass),
		zap.Strings("starting_materials", req.StartingMaterials))

	result, err := c.solver.Calculate(ctx, req)
	if err == nil && result == nil {
		err = errors.NewUpstream("calculate", "empty response")
	}
	if err != nil {
		c.logger.Warn("calculate failed", zap.Error(err))
		c.elements.UpdateError(fmt.Sprintf(
			"Calculation failed. Check target formula, target mass, and starting materials. Details: %s",
			errors.Detail(err)))
		return
	}

	c.elements.UpdateResults(result)
}
