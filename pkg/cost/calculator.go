// Package cost prices one edge traversal of the multimodal network.
//
// All durations are minutes. The calculator is read-only and can be shared by
// concurrent searches over the same tables.
package cost

import (
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
)

type Options struct {
	Model timetable.Model

	MinTransferTime   float64 // minutes
	WalkingSpeed      float64 // km/h
	CyclingSpeed      float64 // km/h
	ParkingSearchTime float64 // minutes
	UseSpeedProfiles  bool

	// Origin is the road node where private vehicles can be taken.
	Origin int64
	// ParkingLocation restricts where private vehicles can be left, nil means anywhere.
	ParkingLocation *int64

	Reversed bool
}

// Query describes an edge traversal from the search's point of view.
type Query struct {
	// Position is the vertex the search stands on. Mode switches happen there.
	Position ctdf.Vertex
	// Mode and TripID are the labels of the current search state.
	Mode   *ctdf.TransportMode
	TripID int64

	Edge     *network.Edge
	EdgeMode *ctdf.TransportMode

	// Time is the time of day at Position.
	Time float64
}

// Result of a feasible traversal. Wait is included in Duration.
type Result struct {
	Duration float64
	Wait     float64
	TripID   int64
	Shift    float64
}

type Calculator struct {
	graph   *network.Graph
	tables  *timetable.Tables
	options Options
	allowed map[int64]bool
}

// NewCalculator prices edges for the allowed modes. tables may be nil when
// no public transport or speed profile data is loaded.
func NewCalculator(graph *network.Graph, tables *timetable.Tables, allowedModes []int64, options Options) *Calculator {
	allowed := make(map[int64]bool, len(allowedModes))
	for _, id := range allowedModes {
		allowed[id] = true
	}

	return &Calculator{
		graph:   graph,
		tables:  tables,
		options: options,
		allowed: allowed,
	}
}

// Cost returns false when the traversal is infeasible.
func (c *Calculator) Cost(q Query) (Result, bool) {
	if q.Edge == nil || q.Mode == nil || q.EdgeMode == nil || !c.allowed[q.EdgeMode.ID] {
		return Result{}, false
	}

	switchTime, ok := c.switchTime(q)
	if !ok {
		return Result{}, false
	}

	at := q.Time + switchTime
	if c.options.Reversed {
		at = q.Time - switchTime
	}

	var result Result
	switch q.Edge.Kind() {
	case network.EdgeKindRoad:
		result, ok = c.road(q.Edge, q.EdgeMode, at)
	case network.EdgeKindAccess, network.EdgeKindEgress:
		result, ok = c.stopLink(q.Edge, q.EdgeMode)
	case network.EdgeKindTransit:
		result, ok = c.transit(q, at)
	default:
		ok = false
	}
	if !ok {
		return Result{}, false
	}

	result.Duration += switchTime
	return result, true
}

// switchTime checks the mode change between the state mode and the edge mode
// at the current position. Rules are written in travel order, so a reversed
// search swaps the two modes first.
func (c *Calculator) switchTime(q Query) (float64, bool) {
	if q.Mode.ID == q.EdgeMode.ID {
		return 0, true
	}

	// Boarding, alighting and changing vehicle are priced by the timetables.
	if q.Position.IsPublicTransport() {
		return 0, true
	}

	initial, final := q.Mode, q.EdgeMode
	if c.options.Reversed {
		initial, final = final, initial
	}

	if initial.PublicTransport || final.PublicTransport {
		return 0, false
	}

	if initial.MustBeReturned || final.MustBeReturned {
		node, ok := c.graph.RoadNode(q.Position.ID)
		if !ok || !node.SharedVehicleStation {
			return 0, false
		}
	}

	var switchTime float64
	if initial.PrivateVehicle {
		if c.options.ParkingLocation != nil && *c.options.ParkingLocation != q.Position.ID {
			return 0, false
		}
		switchTime += c.options.ParkingSearchTime
	}
	if final.PrivateVehicle && q.Position.ID != c.options.Origin {
		return 0, false
	}

	return switchTime, true
}

func (c *Calculator) road(edge *network.Edge, mode *ctdf.TransportMode, at float64) (Result, bool) {
	if mode.PublicTransport || edge.Road == nil || !edge.Road.TrafficRules.Allows(mode.TrafficRules) {
		return Result{}, false
	}

	speed := c.speed(edge.Road, mode, at)
	if speed <= 0 {
		return Result{}, false
	}

	return Result{Duration: edge.Length / metresPerMinute(speed)}, true
}

func (c *Calculator) speed(road *network.RoadEdge, mode *ctdf.TransportMode, at float64) float64 {
	switch mode.SpeedRule {
	case ctdf.SpeedRulePedestrian, ctdf.SpeedRuleRoller:
		return c.options.WalkingSpeed
	case ctdf.SpeedRuleBicycle, ctdf.SpeedRuleElectricCycle:
		return c.options.CyclingSpeed
	}

	// Profiles are only loaded for depart-after requests.
	if c.options.UseSpeedProfiles && !c.options.Reversed && c.tables != nil {
		if speed, ok := c.tables.SpeedAt(road.Section, mode.SpeedRule, at); ok {
			return speed
		}
	}
	return road.CarSpeedLimit
}

// stopLink prices the walk between a stop and its road node.
func (c *Calculator) stopLink(edge *network.Edge, mode *ctdf.TransportMode) (Result, bool) {
	if mode.PublicTransport || mode.SpeedRule != ctdf.SpeedRulePedestrian || c.options.WalkingSpeed <= 0 {
		return Result{}, false
	}
	return Result{Duration: edge.Length / metresPerMinute(c.options.WalkingSpeed)}, true
}

func (c *Calculator) transit(q Query, at float64) (Result, bool) {
	if !q.EdgeMode.PublicTransport || c.tables == nil {
		return Result{}, false
	}

	from, to := q.Edge.TransitKey()
	key := timetable.Key{From: from, To: to, Mode: q.EdgeMode.ID}

	if c.options.Model == timetable.ModelFrequency {
		return c.frequency(key, q.TripID, at)
	}
	if c.options.Reversed {
		return c.reverseTimetable(key, q.TripID, at)
	}
	return c.forwardTimetable(key, q.TripID, at)
}

// forwardTimetable takes the next departure. On board, the running trip's own
// departure competes with vehicles leaving after the minimum transfer time
// and wins unless one of them arrives earlier.
func (c *Calculator) forwardTimetable(key timetable.Key, trip int64, at float64) (Result, bool) {
	var departure timetable.Departure
	var ok bool
	if trip == 0 {
		departure, ok = c.tables.NextDeparture(key, at, 0)
	} else {
		departure, ok = c.tables.NextDeparture(key, at+c.options.MinTransferTime, trip)
		if own, onBoard := c.tables.TripDeparture(key, trip, at); onBoard && (!ok || own.Arrival <= departure.Arrival) {
			departure, ok = own, true
		}
	}
	if !ok {
		return Result{}, false
	}

	return Result{
		Duration: departure.Arrival - at,
		Wait:     departure.Departure - at,
		TripID:   departure.TripID,
	}, true
}

// reverseTimetable picks the last vehicle reaching the far stop in time. The
// gap between its arrival and at is slack (Shift) when the state is not on a
// trip, and a transfer wait or dwell otherwise. On a trip, its own arrival
// wins unless a vehicle reaching the stop before the minimum transfer time
// leaves later.
func (c *Calculator) reverseTimetable(key timetable.Key, trip int64, at float64) (Result, bool) {
	var arrival timetable.Departure
	var ok bool
	if trip == 0 {
		arrival, ok = c.tables.LastArrival(key, at, 0)
	} else {
		arrival, ok = c.tables.LastArrival(key, at-c.options.MinTransferTime, trip)
		if own, onBoard := c.tables.TripArrival(key, trip, at); onBoard && (!ok || own.Departure >= arrival.Departure) {
			arrival, ok = own, true
		}
	}
	if !ok {
		return Result{}, false
	}

	result := Result{
		Duration: at - arrival.Departure,
		TripID:   arrival.TripID,
	}
	gap := at - arrival.Arrival
	if trip == 0 {
		result.Shift = gap
	} else {
		result.Wait = gap
	}
	return result, true
}

// frequency charges half a headway of expected wait when boarding, nothing
// when staying on the same trip.
func (c *Calculator) frequency(key timetable.Key, trip int64, at float64) (Result, bool) {
	if trip != 0 {
		if window, onBoard := c.tables.TripFrequency(key, trip, at); onBoard {
			return Result{Duration: window.TravelTime, TripID: window.TripID}, true
		}
	}

	var window timetable.Frequency
	var ok bool
	if c.options.Reversed {
		window, ok = c.tables.ActiveReverseFrequency(key, at)
	} else {
		window, ok = c.tables.ActiveFrequency(key, at)
	}
	if !ok {
		return Result{}, false
	}

	wait := window.Headway / 2
	return Result{
		Duration: wait + window.TravelTime,
		Wait:     wait,
		TripID:   window.TripID,
	}, true
}

func metresPerMinute(kmh float64) float64 {
	return kmh * 1000 / 60
}
