package network

import (
	"fmt"

	"github.com/travigo/journeyplanner/pkg/ctdf"
)

type RoadNode struct {
	ID       int64
	Location ctdf.Location

	// SharedVehicleStation marks nodes where shared vehicles can be taken or returned.
	SharedVehicleStation bool
}

// RoadEdge is one direction of a road section.
type RoadEdge struct {
	ID      int64
	Section int64

	Source int64
	Target int64

	Length        float64 // metres
	TrafficRules  ctdf.TrafficRule
	CarSpeedLimit float64 // km/h
}

type Stop struct {
	ID        int64
	Name      string
	NetworkID int64
	Location  ctdf.Location
}

type EdgeKind uint8

const (
	EdgeKindRoad EdgeKind = iota + 1
	EdgeKindAccess
	EdgeKindEgress
	EdgeKindTransit
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeKindRoad:
		return "road"
	case EdgeKindAccess:
		return "access"
	case EdgeKindEgress:
		return "egress"
	case EdgeKindTransit:
		return "transit"
	default:
		return "unknown"
	}
}

// Edge is a directed multimodal edge, always stored in travel direction.
type Edge struct {
	Source ctdf.Vertex
	Target ctdf.Vertex

	Length float64 // metres, zero for transit edges

	Road *RoadEdge
}

func (e *Edge) Kind() EdgeKind {
	switch {
	case e.Source.IsRoad() && e.Target.IsRoad():
		return EdgeKindRoad
	case e.Source.IsRoad():
		return EdgeKindAccess
	case e.Target.IsRoad():
		return EdgeKindEgress
	default:
		return EdgeKindTransit
	}
}

// TransitKey identifies the stop pair of a transit edge.
func (e *Edge) TransitKey() (from int64, to int64) {
	return e.Source.ID, e.Target.ID
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s->%s", e.Source, e.Target)
}
