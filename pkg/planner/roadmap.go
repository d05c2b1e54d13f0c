package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
	"github.com/travigo/journeyplanner/pkg/util"
	"golang.org/x/exp/slices"
)

// BuildPath walks predecessors from found back to root. The result is in
// travel order: reversed searches already find their states from the origin
// side.
func BuildPath(labels *Labels, root State, found State, reversed bool) (Path, error) {
	var path Path
	seen := map[State]bool{}

	current := found
	for {
		if seen[current] {
			return nil, fmt.Errorf("%w: predecessor cycle at %s", ErrNoPathFound, current)
		}
		seen[current] = true
		path = append(path, current)

		if current == root {
			break
		}

		predecessor := labels.Predecessor(current)
		if predecessor == current {
			return nil, fmt.Errorf("%w: %s does not lead back to %s", ErrNoPathFound, current, root)
		}
		current = predecessor
	}

	if !reversed {
		slices.Reverse(path)
	}
	return path, nil
}

type RoadmapOptions struct {
	Reversed bool
	Model    timetable.Model

	// Date is the service date, Departure the requested departure of a
	// forward search.
	Date      time.Time
	Departure time.Time

	Trace bool
}

// timeline holds the per-node times, waits, trips and modes of a path in
// travel order. The wait, trip and mode of a hop are stored on its arrival
// node.
type timeline struct {
	times []float64
	waits []float64
	trips []int64
	modes []int64
}

// BuildRoadmap turns a path into typed steps. Costs are the time differences
// between consecutive nodes.
func BuildRoadmap(graph *network.Graph, labels *Labels, path Path, options RoadmapOptions) (*ctdf.Roadmap, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrNoPathFound)
	}

	var line timeline
	switch {
	case !options.Reversed:
		line = forwardTimeline(labels, path)
	case options.Model == timetable.ModelFrequency:
		line = reverseFrequencyTimeline(labels, path)
	default:
		line = reverseTimetableTimeline(labels, path)
	}

	roadmap := &ctdf.Roadmap{
		StartingDateTime: options.Departure,
		Steps:            make([]ctdf.RoadmapStep, 0, len(path)-1),
	}
	if options.Reversed {
		roadmap.StartingDateTime = util.AddMinutesToDate(options.Date, line.times[0])
	}
	line.setModes(path, options.Reversed)

	for i := 0; i+1 < len(path); i++ {
		step, err := buildStep(graph, path, line, i)
		if err != nil {
			return nil, err
		}
		roadmap.Steps = append(roadmap.Steps, step)
	}

	if options.Trace {
		roadmap.Trace = buildTrace(labels, options.Reversed)
	}

	return roadmap, nil
}

func buildStep(graph *network.Graph, path Path, line timeline, i int) (ctdf.RoadmapStep, error) {
	from, to := path[i], path[i+1]
	fromMode, toMode := line.modes[i], line.modes[i+1]

	step := ctdf.RoadmapStep{
		Origin:        from.Position,
		Destination:   to.Position,
		TransportMode: fromMode,
		Cost:          line.times[i+1] - line.times[i],
	}

	switch {
	case fromMode == toMode && from.Position.IsRoad() && to.Position.IsRoad():
		edge, ok := graph.EdgeBetween(from.Position, to.Position)
		if !ok || edge.Road == nil {
			return step, fmt.Errorf("%w: no road edge between %s and %s", ErrDataInconsistency, from.Position, to.Position)
		}
		step.Type = ctdf.StepTypeRoad
		step.RoadEdge = edge.Road.ID

	case from.Position.IsPublicTransport() && to.Position.IsPublicTransport():
		stop, ok := graph.Stop(from.Position.ID)
		if !ok {
			return step, fmt.Errorf("%w: unknown stop %s", ErrDataInconsistency, from.Position)
		}
		step.Type = ctdf.StepTypePublicTransport
		step.TransportMode = toMode
		step.NetworkID = stop.NetworkID
		step.TripID = line.trips[i+1]
		step.Wait = line.waits[i+1]
		step.DepartureTime = line.times[i] + line.waits[i+1]
		step.ArrivalTime = line.times[i+1]

	default:
		step.Type = ctdf.StepTypeTransfer
		step.FinalMode = toMode
	}

	return step, nil
}

func newTimeline(n int) timeline {
	return timeline{
		times: make([]float64, n),
		waits: make([]float64, n),
		trips: make([]int64, n),
		modes: make([]int64, n),
	}
}

// setModes stores the mode each node is reached with. A reversed search
// labels a state with the mode of the edge leaving it in travel order, so its
// modes move one node forward.
func (l timeline) setModes(path Path, reversed bool) {
	for i, s := range path {
		l.modes[i] = s.Mode
		if reversed && i > 0 {
			l.modes[i] = path[i-1].Mode
		}
	}
}

// transitHop reports whether the hop from path[i] to path[i+1] rides a vehicle.
func transitHop(path Path, i int) bool {
	return path[i].Position.IsPublicTransport() && path[i+1].Position.IsPublicTransport()
}

func forwardTimeline(labels *Labels, path Path) timeline {
	line := newTimeline(len(path))
	for i, s := range path {
		line.times[i] = labels.Potential(s)
		line.waits[i] = labels.Wait(s)
		line.trips[i] = labels.Trip(s)
	}
	return line
}

// reverseTimetableTimeline recovers the itinerary a forward search would
// report from the latest feasible times of a reversed search.
//
// A reversed hop stores its trip and wait on the departure node. Time spent
// idle after a vehicle arrives (a transfer wait, a dwell, or the margin left
// before a following walk) is slack: every node after the arrival moves
// earlier by it until the next hop on a vehicle, which then carries it as its
// wait. Slack left at the end of the path means arriving early.
func reverseTimetableTimeline(labels *Labels, path Path) timeline {
	line := newTimeline(len(path))
	for i, s := range path {
		line.times[i] = -labels.Potential(s)
	}

	var slack float64
	for i := range path {
		line.times[i] -= slack
		if i+1 == len(path) || !transitHop(path, i) {
			continue
		}

		line.waits[i+1] += slack
		line.trips[i+1] = labels.Trip(path[i])
		slack = labels.Wait(path[i]) + labels.Shift(path[i]) - labels.Shift(path[i+1])
	}

	return line
}

// reverseFrequencyTimeline moves the expected wait of each run of hops on the
// same trip to the boarding hop. A reversed search charges it on the last hop
// of the run, so the intermediate nodes of the run are reached later than the
// raw potentials say.
func reverseFrequencyTimeline(labels *Labels, path Path) timeline {
	line := newTimeline(len(path))
	for i, s := range path {
		line.times[i] = -labels.Potential(s)
	}

	for i := 0; i+1 < len(path); {
		if !transitHop(path, i) {
			i++
			continue
		}

		trip := labels.Trip(path[i])
		var wait float64
		end := i
		for end+1 < len(path) && transitHop(path, end) && labels.Trip(path[end]) == trip {
			line.trips[end+1] = trip
			wait += labels.Wait(path[end])
			end++
		}

		line.waits[i+1] = wait
		for k := i + 1; k < end; k++ {
			line.times[k] += wait
		}
		i = end
	}

	return line
}

// buildTrace lists every labelled edge in travel direction.
func buildTrace(labels *Labels, reversed bool) []ctdf.ValuedEdge {
	var trace []ctdf.ValuedEdge
	for _, s := range labels.States() {
		predecessor := labels.Predecessor(s)
		if predecessor.Position == s.Position {
			continue
		}

		origin, destination := predecessor, s
		if reversed {
			origin, destination = s, predecessor
		}

		trace = append(trace, ctdf.ValuedEdge{
			Origin:       origin.Position,
			Destination:  destination.Position,
			Duration:     math.Abs(labels.Potential(s) - labels.Potential(predecessor)),
			InitialMode:  origin.Mode,
			FinalMode:    destination.Mode,
			InitialState: int(origin.Automaton),
			FinalState:   int(destination.Automaton),
		})
	}
	return trace
}
