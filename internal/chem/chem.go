// Package chem defines the payloads exchanged with the computation service:
// calculation requests and results, user settings, and atomic-mass rows.
package chem

// MaxStartingMaterials is the upper bound on starting-material slots.
const MaxStartingMaterials = 18

// MinStartingMaterials is the lower bound on starting-material slots.
const MinStartingMaterials = 1

// CalculationRequest is the body of a calculate call.
// TargetMass is sent as typed text; the solver parses it.
type CalculationRequest struct {
	TargetFormula     string   `json:"target_formula"`
	TargetMass        string   `json:"target_mass"`
	StartingMaterials []string `json:"starting_materials"`
}

// ElementCoeff is one element/coefficient pair of a parsed formula.
type ElementCoeff struct {
	Element     string  `json:"element"`
	Coefficient float64 `json:"coefficient"`
}

// ReagentResult is the computed amount of one starting material.
type ReagentResult struct {
	Reagent   string  `json:"reagent"`
	Moles     float64 `json:"moles"`
	MolarMass float64 `json:"molar_mass"`
	Mass      float64 `json:"mass"`
}

// MassCheck compares the requested target mass with the summed reagent mass.
type MassCheck struct {
	TargetMass       float64 `json:"target_mass"`
	TotalReagentMass float64 `json:"total_reagent_mass"`
	Delta            float64 `json:"delta"`
}

// CalculationResult is the solver's answer, held verbatim by the client.
type CalculationResult struct {
	TargetFormula string          `json:"target_formula"`
	ParsedFormula []ElementCoeff  `json:"parsed_formula"`
	MolarMass     float64         `json:"molar_mass"`
	TargetMoles   float64         `json:"target_moles"`
	Reagents      []ReagentResult `json:"reagents"`
	MassCheck     MassCheck       `json:"mass_check"`
	Explanation   []string        `json:"explanation"`
}

// Clone returns a deep copy so stored results never alias caller slices.
func (r *CalculationResult) Clone() *CalculationResult {
	if r == nil {
		return nil
	}
	out := *r
	out.ParsedFormula = append([]ElementCoeff(nil), r.ParsedFormula...)
	out.Reagents = append([]ReagentResult(nil), r.Reagents...)
	out.Explanation = append([]string(nil), r.Explanation...)
	return &out
}

// Element is one row of the atomic-mass reference table.
type Element struct {
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	AtomicMass float64 `json:"atomic_mass"`
}
