package session

import (
	"github.com/hpungsan/masscalc/internal/chem"
	"github.com/hpungsan/masscalc/internal/ops"
)

// State is the externally visible form of the calculator.
type State struct {
	TargetFormula     string                  `json:"target_formula"`
	TargetMass        string                  `json:"target_mass"`
	StartingMaterials []string                `json:"starting_materials"`
	Results           *chem.CalculationResult `json:"results"`
	Error             string                  `json:"error,omitempty"`
}

// State returns a snapshot of the calculator form.
func (s *Session) State() State {
	st := s.Elements.Snapshot()
	return State{
		TargetFormula:     st.TargetFormula,
		TargetMass:        st.TargetMass,
		StartingMaterials: st.StartingMaterials,
		Results:           st.Results,
		Error:             st.Error,
	}
}

// EditorState is the atomic-mass editor together with the shared error slot.
type EditorState struct {
	Rows  []ops.ElementRow `json:"rows"`
	Error string           `json:"error,omitempty"`
}

// EditorState returns the editor rows and the current error message.
func (s *Session) EditorState() EditorState {
	rows := s.Editor.Rows()
	if rows == nil {
		rows = []ops.ElementRow{}
	}
	return EditorState{Rows: rows, Error: s.Elements.Snapshot().Error}
}
