// Package automaton tracks turning movements along road edges.
//
// Restrictions are sequences of road edges. The automaton is a trie of those
// sequences with failure links, so that after every road edge its state is the
// longest restriction prefix that ends with the edges just travelled. Reaching
// the end of a restriction either forbids the movement or adds a penalty.
//
// Only road-to-road edges move the automaton. Any other edge resets it to
// InitialState.
package automaton

import (
	"errors"
	"fmt"
	"math"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
)

var (
	ErrShortRestriction        = errors.New("automaton: restriction needs at least two road edges")
	ErrUnknownRoadEdge         = errors.New("automaton: restriction references an unknown road edge")
	ErrDisconnectedRestriction = errors.New("automaton: restriction road edges are not consecutive")
	ErrInvalidPenalty          = errors.New("automaton: restriction penalty must be positive")
	ErrNoTrafficRules          = errors.New("automaton: restriction applies to no traffic rule")
)

// State is an automaton state. States are dense integers starting at InitialState.
type State int

const InitialState State = 0

// Restriction applies to every mode sharing one of its traffic rules.
type Restriction struct {
	ID           int64            `yaml:"id"`
	RoadEdges    []int64          `yaml:"road_edges"`
	TrafficRules ctdf.TrafficRule `yaml:"traffic_rules"`
	// Penalty in minutes, +Inf forbids the movement.
	Penalty float64 `yaml:"penalty"`
}

func Forbidden(id int64, rules ctdf.TrafficRule, roadEdges ...int64) Restriction {
	return Restriction{ID: id, RoadEdges: roadEdges, TrafficRules: rules, Penalty: math.Inf(1)}
}

// RoadEdgeResolver is satisfied by *network.Graph.
type RoadEdgeResolver interface {
	RoadEdge(id int64) (*network.RoadEdge, bool)
}

type output struct {
	rules   ctdf.TrafficRule
	penalty float64
}

type Automaton struct {
	next     []map[int64]State
	failure  []State
	outputs  [][]output
	alphabet map[int64]bool
	reversed bool
}

// Empty returns an automaton with no restriction.
func Empty() *Automaton {
	a := &Automaton{alphabet: map[int64]bool{}}
	a.newState()
	return a
}

// Build validates the restrictions and compiles them for forward searches.
func Build(edges RoadEdgeResolver, restrictions []Restriction) (*Automaton, error) {
	return build(edges, restrictions, false)
}

// BuildReverse compiles the same restrictions for searches that walk edges backwards.
func BuildReverse(edges RoadEdgeResolver, restrictions []Restriction) (*Automaton, error) {
	return build(edges, restrictions, true)
}

func build(edges RoadEdgeResolver, restrictions []Restriction, reversed bool) (*Automaton, error) {
	a := Empty()
	a.reversed = reversed

	for _, restriction := range restrictions {
		if err := validate(edges, restriction); err != nil {
			return nil, err
		}

		sequence := restriction.RoadEdges
		if reversed {
			sequence = make([]int64, len(restriction.RoadEdges))
			for i, id := range restriction.RoadEdges {
				sequence[len(sequence)-1-i] = id
			}
		}

		state := InitialState
		for _, id := range sequence {
			a.alphabet[id] = true
			child, ok := a.next[state][id]
			if !ok {
				child = a.newState()
				a.next[state][id] = child
			}
			state = child
		}
		a.outputs[state] = append(a.outputs[state], output{rules: restriction.TrafficRules, penalty: restriction.Penalty})
	}

	a.link()

	return a, nil
}

func validate(edges RoadEdgeResolver, restriction Restriction) error {
	if len(restriction.RoadEdges) < 2 {
		return fmt.Errorf("%w: restriction %d", ErrShortRestriction, restriction.ID)
	}
	if restriction.TrafficRules == 0 {
		return fmt.Errorf("%w: restriction %d", ErrNoTrafficRules, restriction.ID)
	}
	if math.IsNaN(restriction.Penalty) || restriction.Penalty <= 0 {
		return fmt.Errorf("%w: restriction %d penalty=%v", ErrInvalidPenalty, restriction.ID, restriction.Penalty)
	}

	var previous *network.RoadEdge
	for _, id := range restriction.RoadEdges {
		edge, ok := edges.RoadEdge(id)
		if !ok {
			return fmt.Errorf("%w: restriction %d edge %d", ErrUnknownRoadEdge, restriction.ID, id)
		}
		if previous != nil && previous.Target != edge.Source {
			return fmt.Errorf("%w: restriction %d edges %d and %d", ErrDisconnectedRestriction, restriction.ID, previous.ID, edge.ID)
		}
		previous = edge
	}

	return nil
}

func (a *Automaton) newState() State {
	a.next = append(a.next, map[int64]State{})
	a.failure = append(a.failure, InitialState)
	a.outputs = append(a.outputs, nil)
	return State(len(a.next) - 1)
}

// link computes failure links breadth first and merges the outputs of each
// state's failure chain into the state itself.
func (a *Automaton) link() {
	queue := make([]State, 0, len(a.next))
	for _, child := range a.next[InitialState] {
		a.failure[child] = InitialState
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		for id, child := range a.next[state] {
			fallback := a.failure[state]
			for {
				if target, ok := a.next[fallback][id]; ok {
					a.failure[child] = target
					break
				}
				if fallback == InitialState {
					a.failure[child] = InitialState
					break
				}
				fallback = a.failure[fallback]
			}
			a.outputs[child] = append(a.outputs[child], a.outputs[a.failure[child]]...)
			queue = append(queue, child)
		}
	}
}

// Transition moves along a road edge for a mode with the given traffic rules.
// It returns the next state, the penalty in minutes and false when the
// movement is forbidden.
func (a *Automaton) Transition(from State, roadEdge int64, rules ctdf.TrafficRule) (State, float64, bool) {
	to := InitialState
	if a.alphabet[roadEdge] {
		state := from
		for {
			if next, ok := a.next[state][roadEdge]; ok {
				to = next
				break
			}
			if state == InitialState {
				break
			}
			state = a.failure[state]
		}
	}

	var penalty float64
	for _, out := range a.outputs[to] {
		if !out.rules.Allows(rules) {
			continue
		}
		if math.IsInf(out.penalty, 1) {
			return to, 0, false
		}
		penalty += out.penalty
	}

	return to, penalty, true
}

func (a *Automaton) StateCount() int {
	return len(a.next)
}

func (a *Automaton) Reversed() bool {
	return a.reversed
}
