package planner

import (
	"container/heap"

	"github.com/rs/zerolog"
	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/cost"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
)

// Coster prices one edge traversal, false meaning infeasible.
type Coster interface {
	Cost(q cost.Query) (cost.Result, bool)
}

// Search is a time dependent A* over (position, mode, automaton state)
// triples. A Search and its Labels serve a single run; the view, automaton
// and coster are read-only and can be shared.
//
// Potentials are minutes since midnight going forward. On a reversed view
// they are negated times so that the same min-ordering walks back in time.
type Search struct {
	View      network.View
	Automaton *automaton.Automaton
	Cost      Coster
	// Modes are the allowed modes, tried in this order on every edge.
	Modes     []*ctdf.TransportMode
	Visitor   Visitor
	Heuristic Heuristic
	Labels    *Labels
	Logger    zerolog.Logger

	Iterations int

	modes     map[int64]*ctdf.TransportMode
	finalized map[State]bool
	pq        statePQ
	sequence  int
}

// Run searches from root until the visitor stops it, returning the state
// that satisfied the visitor. Exhausting the queue yields ErrNoPathFound.
func (s *Search) Run(root State, rootPotential float64) (State, error) {
	// 1. Initialize labels and queue
	s.init(root, rootPotential)

	// 2. Main loop: pop, finalize, visit, relax
	for s.pq.Len() > 0 {
		item := heap.Pop(&s.pq).(*stateItem)
		u := item.state
		if s.finalized[u] {
			continue
		}
		s.finalized[u] = true
		s.Iterations++

		s.Logger.Debug().
			Stringer("state", u).
			Float64("potential", s.Labels.Potential(u)).
			Int64("trip", s.Labels.Trip(u)).
			Msg("Examine")

		if s.Visitor != nil && s.Visitor.Examine(u) == Stop {
			return u, nil
		}

		s.relax(u)
	}

	// 3. Queue exhausted without satisfying the visitor
	return State{}, ErrNoPathFound
}

func (s *Search) init(root State, rootPotential float64) {
	if s.Labels == nil {
		s.Labels = NewLabels()
	}
	if s.Heuristic == nil {
		s.Heuristic = NullHeuristic{}
	}
	if s.Automaton == nil {
		s.Automaton = automaton.Empty()
	}

	s.modes = make(map[int64]*ctdf.TransportMode, len(s.Modes))
	for _, m := range s.Modes {
		s.modes[m.ID] = m
	}
	s.finalized = map[State]bool{}
	s.pq = s.pq[:0]
	s.sequence = 0
	s.Iterations = 0

	s.Labels.setRoot(root, rootPotential)
	heap.Init(&s.pq)
	s.push(root, rootPotential)
}

// relax tries every (edge, mode) pair leaving u.
func (s *Search) relax(u State) {
	mode, ok := s.modes[u.Mode]
	if !ok {
		return
	}

	potential := s.Labels.Potential(u)
	at := potential
	if s.View.Reversed() {
		at = -potential
	}

	for edge, target := range s.View.Neighbors(u.Position) {
		for _, edgeMode := range s.Modes {
			// Automaton states only advance on road edges
			next := automaton.InitialState
			var penalty float64
			if edge.Road != nil {
				var allowed bool
				next, penalty, allowed = s.Automaton.Transition(u.Automaton, edge.Road.ID, edgeMode.TrafficRules)
				if !allowed {
					s.Logger.Debug().Stringer("edge", edge).Int64("mode", edgeMode.ID).Msg("Forbidden movement")
					continue
				}
			}

			result, feasible := s.Cost.Cost(cost.Query{
				Position: u.Position,
				Mode:     mode,
				TripID:   s.Labels.Trip(u),
				Edge:     edge,
				EdgeMode: edgeMode,
				Time:     at,
			})
			if !feasible {
				continue
			}

			v := State{Position: target, Mode: edgeMode.ID, Automaton: next}
			if s.finalized[v] {
				continue
			}

			newPotential := potential + result.Duration + penalty
			if newPotential >= s.Labels.Potential(v) {
				s.Logger.Debug().Stringer("state", v).Float64("potential", newPotential).Msg("Not relaxed")
				continue
			}

			s.Labels.update(v, newPotential, u, result.TripID, result.Wait, s.Labels.Shift(u)+result.Shift)
			s.push(v, newPotential)

			s.Logger.Debug().
				Stringer("state", v).
				Float64("potential", newPotential).
				Float64("wait", result.Wait).
				Int64("trip", result.TripID).
				Msg("Relaxed")
		}
	}
}

func (s *Search) push(v State, potential float64) {
	s.sequence++
	heap.Push(&s.pq, &stateItem{
		state:    v,
		key:      potential + s.Heuristic.Estimate(v.Position),
		sequence: s.sequence,
	})
}

// stateItem is a queue entry. Stale entries are left in place and skipped
// once their state has been finalized.
type stateItem struct {
	state    State
	key      float64
	sequence int
}

// statePQ implements heap.Interface, smallest key first and FIFO on ties.
type statePQ []*stateItem

func (pq statePQ) Len() int { return len(pq) }
func (pq statePQ) Less(i, j int) bool {
	if pq[i].key != pq[j].key {
		return pq[i].key < pq[j].key
	}
	return pq[i].sequence < pq[j].sequence
}
func (pq statePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *statePQ) Push(x interface{}) { *pq = append(*pq, x.(*stateItem)) }
func (pq *statePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}
