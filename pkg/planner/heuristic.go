package planner

import (
	"math"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
)

// Heuristic is a lower bound, in minutes, of the time left from a position.
type Heuristic interface {
	Estimate(position ctdf.Vertex) float64
}

// NullHeuristic turns the search into a plain label-setting Dijkstra.
type NullHeuristic struct{}

func (NullHeuristic) Estimate(ctdf.Vertex) float64 { return 0 }

// EuclideanHeuristic divides the straight line distance to the nearest
// target by the highest speed of the network.
type EuclideanHeuristic struct {
	graph           *network.Graph
	targets         []ctdf.Location
	metresPerMinute float64
}

func NewEuclideanHeuristic(graph *network.Graph, targets []ctdf.Vertex, maxSpeed float64) *EuclideanHeuristic {
	h := &EuclideanHeuristic{
		graph:           graph,
		metresPerMinute: maxSpeed * 1000 / 60,
	}
	for _, t := range targets {
		h.targets = append(h.targets, graph.Location(t))
	}
	return h
}

func (h *EuclideanHeuristic) Estimate(position ctdf.Vertex) float64 {
	if h.metresPerMinute <= 0 || len(h.targets) == 0 {
		return 0
	}

	from := h.graph.Location(position)
	nearest := math.Inf(1)
	for _, t := range h.targets {
		nearest = min(nearest, from.Distance(t))
	}
	return nearest / h.metresPerMinute
}
