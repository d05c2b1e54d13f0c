package planner

import (
	"github.com/rs/zerolog"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
)

// VisitResult tells the search loop whether to keep going after a state has
// been finalized.
type VisitResult int

const (
	Continue VisitResult = iota
	Stop
)

// Visitor observes every finalized state.
type Visitor interface {
	Examine(s State) VisitResult
}

// DestinationVisitor stops the search once every pending road position has
// been finalized with an acceptable mode.
type DestinationVisitor struct {
	graph   *network.Graph
	pending map[int64]bool
	reached []State

	privateVehicleAtDestination bool
	reversed                    bool

	logger zerolog.Logger
}

func NewDestinationVisitor(graph *network.Graph, destinations []int64, privateVehicleAtDestination bool, reversed bool, logger zerolog.Logger) *DestinationVisitor {
	pending := make(map[int64]bool, len(destinations))
	for _, d := range destinations {
		pending[d] = true
	}

	return &DestinationVisitor{
		graph:                       graph,
		pending:                     pending,
		privateVehicleAtDestination: privateVehicleAtDestination,
		reversed:                    reversed,
		logger:                      logger,
	}
}

func (v *DestinationVisitor) Examine(s State) VisitResult {
	if !s.Position.IsRoad() || !v.pending[s.Position.ID] {
		return Continue
	}

	mode, ok := v.graph.TransportMode(s.Mode)
	if !ok || !v.accepts(mode) {
		return Continue
	}

	delete(v.pending, s.Position.ID)
	v.reached = append(v.reached, s)
	v.logger.Debug().Stringer("state", s).Int("pending", len(v.pending)).Msg("Destination reached")

	if len(v.pending) == 0 {
		return Stop
	}
	return Continue
}

// accepts applies the destination mode rule. A reversed search ends at the
// origin, where a private vehicle is always available.
func (v *DestinationVisitor) accepts(mode *ctdf.TransportMode) bool {
	if mode.PublicTransport || mode.MustBeReturned {
		return false
	}
	if mode.PrivateVehicle && !v.reversed {
		return v.privateVehicleAtDestination
	}
	return true
}

// Reached lists the satisfied targets in finalization order.
func (v *DestinationVisitor) Reached() []State {
	return v.reached
}

func (v *DestinationVisitor) Pending() int {
	return len(v.pending)
}
