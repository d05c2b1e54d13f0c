package ctdf

import (
	"time"
)

type StepType string

const (
	StepTypeRoad            StepType = "Road"
	StepTypePublicTransport StepType = "PublicTransport"
	StepTypeTransfer        StepType = "Transfer"
)

// RoadmapStep is one leg of a roadmap. Times and costs are minutes, times are
// counted from midnight of the service date.
type RoadmapStep struct {
	Type StepType `json:"type" groups:"basic"`

	Origin      Vertex `json:"origin" groups:"basic"`
	Destination Vertex `json:"destination" groups:"basic"`

	TransportMode int64 `json:"transport_mode" groups:"basic"`
	// FinalMode is only set on transfer steps.
	FinalMode int64 `json:"final_mode,omitempty" groups:"basic"`

	RoadEdge int64 `json:"road_edge,omitempty" groups:"basic"`

	TripID        int64   `json:"trip_id,omitempty" groups:"basic"`
	NetworkID     int64   `json:"network_id,omitempty" groups:"basic"`
	DepartureTime float64 `json:"departure_time,omitempty" groups:"basic"`
	ArrivalTime   float64 `json:"arrival_time,omitempty" groups:"basic"`
	Wait          float64 `json:"wait,omitempty" groups:"basic"`

	Cost float64 `json:"cost" groups:"basic"`
}

// ValuedEdge is one entry of the search trace.
type ValuedEdge struct {
	Origin      Vertex  `json:"origin" groups:"detailed"`
	Destination Vertex  `json:"destination" groups:"detailed"`
	Duration    float64 `json:"duration" groups:"detailed"`

	InitialMode  int64 `json:"initial_mode" groups:"detailed"`
	FinalMode    int64 `json:"final_mode" groups:"detailed"`
	InitialState int   `json:"initial_state" groups:"detailed"`
	FinalState   int   `json:"final_state" groups:"detailed"`
}

type Roadmap struct {
	StartingDateTime time.Time     `json:"starting_date_time" groups:"basic"`
	Steps            []RoadmapStep `json:"steps" groups:"basic"`

	Trace []ValuedEdge `json:"trace,omitempty" groups:"detailed"`
}

// TotalDuration is the sum of step costs in minutes.
func (r *Roadmap) TotalDuration() float64 {
	var total float64
	for _, step := range r.Steps {
		total += step.Cost
	}
	return total
}

func (r *Roadmap) ArrivalDateTime() time.Time {
	return r.StartingDateTime.Add(time.Duration(r.TotalDuration() * float64(time.Minute)))
}
