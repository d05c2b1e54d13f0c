package planner

import (
	"cmp"
	"fmt"

	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/ctdf"
)

// State is a vertex of the search graph: a network position reached with a
// transport mode in a given automaton state. It is comparable and used as a
// map key by the label store.
type State struct {
	Position  ctdf.Vertex
	Mode      int64
	Automaton automaton.State
}

func (s State) String() string {
	return fmt.Sprintf("(%s, mode %d, state %d)", s.Position, s.Mode, s.Automaton)
}

func (s State) Compare(other State) int {
	if c := s.Position.Compare(other.Position); c != 0 {
		return c
	}
	if c := cmp.Compare(s.Mode, other.Mode); c != 0 {
		return c
	}
	return cmp.Compare(s.Automaton, other.Automaton)
}

// Path is a sequence of states in travel order.
type Path []State
