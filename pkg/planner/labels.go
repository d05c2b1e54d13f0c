package planner

import (
	"math"

	"golang.org/x/exp/slices"
)

// Labels holds the per-state search results as parallel maps. Unreached
// states have an infinite potential and are their own predecessor.
type Labels struct {
	potential   map[State]float64
	predecessor map[State]State
	trip        map[State]int64
	wait        map[State]float64
	shift       map[State]float64
}

func NewLabels() *Labels {
	return &Labels{
		potential:   map[State]float64{},
		predecessor: map[State]State{},
		trip:        map[State]int64{},
		wait:        map[State]float64{},
		shift:       map[State]float64{},
	}
}

func (l *Labels) Potential(s State) float64 {
	if p, ok := l.potential[s]; ok {
		return p
	}
	return math.Inf(1)
}

func (l *Labels) Predecessor(s State) State {
	if p, ok := l.predecessor[s]; ok {
		return p
	}
	return s
}

// Trip is the public transport trip used to reach s, zero off board.
func (l *Labels) Trip(s State) int64 {
	return l.trip[s]
}

func (l *Labels) Wait(s State) float64 {
	return l.wait[s]
}

// Shift is the slack accumulated by a reversed search up to s.
func (l *Labels) Shift(s State) float64 {
	return l.shift[s]
}

func (l *Labels) Reached(s State) bool {
	_, ok := l.potential[s]
	return ok
}

func (l *Labels) Len() int {
	return len(l.potential)
}

// States returns every reached state in a stable order.
func (l *Labels) States() []State {
	states := make([]State, 0, len(l.potential))
	for s := range l.potential {
		states = append(states, s)
	}
	slices.SortFunc(states, State.Compare)
	return states
}

func (l *Labels) setRoot(s State, potential float64) {
	l.potential[s] = potential
	l.predecessor[s] = s
	l.trip[s] = 0
	l.wait[s] = 0
	l.shift[s] = 0
}

func (l *Labels) update(s State, potential float64, predecessor State, trip int64, wait float64, shift float64) {
	l.potential[s] = potential
	l.predecessor[s] = predecessor
	l.trip[s] = trip
	l.wait[s] = wait
	l.shift[s] = shift
}
