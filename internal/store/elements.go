// Package store holds the two client-side state containers: the calculation
// form with its results and error slot, and the user settings. Each store is
// mutated only through its own methods; readers take copies via Snapshot.
package store

import (
	"sync"

	"github.com/hpungsan/masscalc/internal/chem"
)

// FormulaState is the calculation form, the last result and the error slot.
type FormulaState struct {
	TargetFormula     string
	TargetMass        string
	StartingMaterials []string
	Results           *chem.CalculationResult
	Error             string

	// FormulaRevision increments every time TargetFormula changes.
	FormulaRevision uint64
}

// HasError reports whether the error slot is occupied.
func (s FormulaState) HasError() bool {
	return s.Error != ""
}

// ElementsStore owns a FormulaState. Listeners run synchronously in the
// mutating goroutine, after the store lock is released.
type ElementsStore struct {
	mu    sync.RWMutex
	state FormulaState

	// fillEpoch identifies the latest auto-fill activation. Guarded writes
	// carrying an older epoch are rejected.
	fillEpoch uint64

	listeners[FormulaState]
}

// NewElementsStore returns a store with an empty form and two empty
// starting-material slots.
func NewElementsStore() *ElementsStore {
	return &ElementsStore{
		state: FormulaState{
			StartingMaterials: []string{"", ""},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *ElementsStore) Snapshot() FormulaState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every mutation.
// The returned function unregisters it.
func (s *ElementsStore) Subscribe(fn func(FormulaState)) func() {
	return s.listeners.add(fn)
}

// UpdateTargetFormula overwrites the target formula. Writing the current
// value again is a no-op.
func (s *ElementsStore) UpdateTargetFormula(formula string) {
	s.mutate(func(st *FormulaState) bool {
		if st.TargetFormula == formula {
			return false
		}
		st.TargetFormula = formula
		st.FormulaRevision++
		return true
	})
}

// UpdateTargetMass overwrites the target mass text.
func (s *ElementsStore) UpdateTargetMass(mass string) {
	s.mutate(func(st *FormulaState) bool {
		st.TargetMass = mass
		return true
	})
}

// UpdateStartingMaterial overwrites one slot. Out-of-range indexes are ignored.
func (s *ElementsStore) UpdateStartingMaterial(index int, value string) {
	s.mutate(func(st *FormulaState) bool {
		if index < 0 || index >= len(st.StartingMaterials) {
			return false
		}
		st.StartingMaterials[index] = value
		return true
	})
}

// SetStartingMaterials replaces the whole list, keeping at most the first
// MaxStartingMaterials entries. An empty list is ignored so the list never
// drops below one slot.
func (s *ElementsStore) SetStartingMaterials(materials []string) {
	s.mutate(func(st *FormulaState) bool {
		return setMaterials(st, materials)
	})
}

// BeginAutoFill starts a new auto-fill epoch and returns it. Every write
// tagged with an earlier epoch is rejected from then on.
func (s *ElementsStore) BeginAutoFill() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillEpoch++
	return s.fillEpoch
}

// SetStartingMaterialsAt is SetStartingMaterials guarded by the formula
// revision and the auto-fill epoch: it applies only if no TargetFormula write
// happened since rev was observed and epoch is still the latest one. It
// reports whether it applied.
func (s *ElementsStore) SetStartingMaterialsAt(rev, epoch uint64, materials []string) bool {
	return s.mutate(func(st *FormulaState) bool {
		if st.FormulaRevision != rev || s.fillEpoch != epoch {
			return false
		}
		return setMaterials(st, materials)
	})
}

// AddStartingMaterial appends an empty slot unless the list is full.
func (s *ElementsStore) AddStartingMaterial() {
	s.mutate(func(st *FormulaState) bool {
		if len(st.StartingMaterials) >= chem.MaxStartingMaterials {
			return false
		}
		st.StartingMaterials = append(st.StartingMaterials, "")
		return true
	})
}

// RemoveStartingMaterial removes the slot at index unless only one slot is left.
// Out-of-range indexes are ignored.
func (s *ElementsStore) RemoveStartingMaterial(index int) {
	s.mutate(func(st *FormulaState) bool {
		if len(st.StartingMaterials) <= chem.MinStartingMaterials {
			return false
		}
		if index < 0 || index >= len(st.StartingMaterials) {
			return false
		}
		st.StartingMaterials = append(st.StartingMaterials[:index], st.StartingMaterials[index+1:]...)
		return true
	})
}

// UpdateResults replaces the result wholesale and clears the error slot.
func (s *ElementsStore) UpdateResults(result *chem.CalculationResult) {
	s.mutate(func(st *FormulaState) bool {
		st.Results = result.Clone()
		st.Error = ""
		return true
	})
}

// UpdateError sets the error slot. Results are left untouched.
func (s *ElementsStore) UpdateError(msg string) {
	s.mutate(func(st *FormulaState) bool {
		st.Error = msg
		return true
	})
}

// UpdateErrorAt is UpdateError guarded like SetStartingMaterialsAt.
func (s *ElementsStore) UpdateErrorAt(rev, epoch uint64, msg string) bool {
	return s.mutate(func(st *FormulaState) bool {
		if st.FormulaRevision != rev || s.fillEpoch != epoch {
			return false
		}
		st.Error = msg
		return true
	})
}

// ClearError empties the error slot.
func (s *ElementsStore) ClearError() {
	s.mutate(func(st *FormulaState) bool {
		if st.Error == "" {
			return false
		}
		st.Error = ""
		return true
	})
}

// mutate applies fn under the write lock and, if fn reports a change,
// notifies listeners with the new snapshot.
func (s *ElementsStore) mutate(fn func(*FormulaState) bool) bool {
	s.mu.Lock()
	changed := fn(&s.state)
	var snap FormulaState
	if changed {
		snap = s.state.clone()
	}
	s.mu.Unlock()

	if changed {
		s.listeners.notify(snap)
	}
	return changed
}

func setMaterials(st *FormulaState, materials []string) bool {
	if len(materials) == 0 {
		return false
	}
	if len(materials) > chem.MaxStartingMaterials {
		materials = materials[:chem.MaxStartingMaterials]
	}
	st.StartingMaterials = append([]string(nil), materials...)
	return true
}

func (s FormulaState) clone() FormulaState {
	out := s
	out.StartingMaterials = append([]string(nil), s.StartingMaterials...)
	out.Results = s.Results.Clone()
	return out
}
