package cost_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/cost"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
)

const bus int64 = 5

type fixture struct {
	graph  *network.Graph
	tables *timetable.Tables

	road    *network.Edge
	access  *network.Edge
	transit *network.Edge
}

func newFixture(t *testing.T, model timetable.Model) fixture {
	t.Helper()

	return newFixtureWith(t, model, func(tb *timetable.Builder, key timetable.Key) {
		if model == timetable.ModelFrequency {
			tb.AddFrequency(key, timetable.Frequency{TripID: 7, Start: 420, End: 600, Headway: 10, TravelTime: 6})
			return
		}
		tb.AddDeparture(key, timetable.Departure{TripID: 1, Departure: 480, Arrival: 490})
		tb.AddDeparture(key, timetable.Departure{TripID: 2, Departure: 510, Arrival: 520})
	})
}

// newFixtureWith lets rows fill the transit edge 100 -> 101.
func newFixtureWith(t *testing.T, model timetable.Model, rows func(tb *timetable.Builder, key timetable.Key)) fixture {
	t.Helper()

	b := network.NewBuilder()
	b.AddRoadNode(network.RoadNode{ID: 1})
	b.AddRoadNode(network.RoadNode{ID: 2, SharedVehicleStation: true})
	b.AddRoadNode(network.RoadNode{ID: 3})
	b.AddRoadEdge(network.RoadEdge{ID: 10, Section: 10, Source: 1, Target: 2, Length: 600, TrafficRules: ctdf.TrafficRuleAll, CarSpeedLimit: 36})
	b.AddRoadEdge(network.RoadEdge{ID: 11, Section: 11, Source: 2, Target: 3, Length: 600, TrafficRules: ctdf.TrafficRulePedestrian})
	b.AddStop(network.Stop{ID: 100})
	b.AddStop(network.Stop{ID: 101})
	b.AddStopLink(100, 1, 60)
	b.AddStopLink(101, 3, 60)
	b.AddTransitSection(100, 101)
	g, err := b.Build()
	require.NoError(t, err)

	tb := timetable.NewBuilder(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), model)
	rows(tb, timetable.Key{From: 100, To: 101, Mode: bus})
	tb.AddSpeedPeriod(10, ctdf.SpeedRuleCar, 420, 540, 18)
	tables, err := tb.Build()
	require.NoError(t, err)

	road, _ := g.EdgeBetween(ctdf.RoadVertex(1), ctdf.RoadVertex(2))
	access, _ := g.EdgeBetween(ctdf.RoadVertex(1), ctdf.StopVertex(100))
	transit, _ := g.EdgeBetween(ctdf.StopVertex(100), ctdf.StopVertex(101))

	return fixture{graph: g, tables: tables, road: road, access: access, transit: transit}
}

func (f fixture) mode(t *testing.T, id int64) *ctdf.TransportMode {
	t.Helper()
	m, ok := f.graph.TransportMode(id)
	require.True(t, ok)
	return m
}

func defaultOptions() cost.Options {
	return cost.Options{
		MinTransferTime:   2,
		WalkingSpeed:      3.6,
		CyclingSpeed:      12,
		ParkingSearchTime: 5,
		Origin:            1,
	}
}

var allModes = []int64{1, 2, 3, 4, 5, 9}

func TestRoadCosts(t *testing.T) {
	f := newFixture(t, timetable.ModelTimetable)
	walking := f.mode(t, ctdf.TransportModeWalking)
	car := f.mode(t, ctdf.TransportModePrivateCar)

	calc := cost.NewCalculator(f.graph, f.tables, allModes, defaultOptions())

	result, ok := calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.road, EdgeMode: walking, Time: 480})
	require.True(t, ok)
	assert.InDelta(t, 10, result.Duration, 1e-9)
	assert.Zero(t, result.TripID)

	result, ok = calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: car, Edge: f.road, EdgeMode: car, Time: 480})
	require.True(t, ok)
	assert.InDelta(t, 1, result.Duration, 1e-9, "speed limit applies without profiles")

	options := defaultOptions()
	options.UseSpeedProfiles = true
	profiled := cost.NewCalculator(f.graph, f.tables, allModes, options)

	result, ok = profiled.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: car, Edge: f.road, EdgeMode: car, Time: 480})
	require.True(t, ok)
	assert.InDelta(t, 2, result.Duration, 1e-9)

	result, ok = profiled.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: car, Edge: f.road, EdgeMode: car, Time: 600})
	require.True(t, ok)
	assert.InDelta(t, 1, result.Duration, 1e-9, "outside every period the limit applies")

	pedestrianOnly, _ := f.graph.EdgeBetween(ctdf.RoadVertex(2), ctdf.RoadVertex(3))
	_, ok = calc.Cost(cost.Query{Position: ctdf.RoadVertex(2), Mode: car, Edge: pedestrianOnly, EdgeMode: car, Time: 480})
	assert.False(t, ok, "traffic rules forbid cars")
}

func TestCost_DisallowedMode(t *testing.T) {
	f := newFixture(t, timetable.ModelTimetable)
	walking := f.mode(t, ctdf.TransportModeWalking)

	calc := cost.NewCalculator(f.graph, f.tables, []int64{bus}, defaultOptions())
	_, ok := calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.road, EdgeMode: walking, Time: 480})
	assert.False(t, ok)
}

func TestModeSwitching(t *testing.T) {
	f := newFixture(t, timetable.ModelTimetable)
	walking := f.mode(t, ctdf.TransportModeWalking)
	car := f.mode(t, ctdf.TransportModePrivateCar)
	shared := f.mode(t, 9)

	calc := cost.NewCalculator(f.graph, f.tables, allModes, defaultOptions())

	result, ok := calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: car, Edge: f.road, EdgeMode: walking, Time: 480})
	require.True(t, ok, "cars can be parked anywhere without a parking location")
	assert.InDelta(t, 15, result.Duration, 1e-9, "parking search time is added")

	_, ok = calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.road, EdgeMode: car, Time: 480})
	assert.True(t, ok, "private vehicles are taken at the origin")

	parking := int64(2)
	options := defaultOptions()
	options.ParkingLocation = &parking
	restricted := cost.NewCalculator(f.graph, f.tables, allModes, options)
	_, ok = restricted.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: car, Edge: f.road, EdgeMode: walking, Time: 480})
	assert.False(t, ok, "cars must be left at the parking location")

	_, ok = calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.road, EdgeMode: shared, Time: 480})
	assert.False(t, ok, "shared vehicles are only available at stations")

	options = defaultOptions()
	options.Reversed = true
	reversed := cost.NewCalculator(f.graph, f.tables, allModes, options)
	result, ok = reversed.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.road, EdgeMode: car, Time: 480})
	require.True(t, ok, "walking after driving is leaving the car")
	assert.InDelta(t, 6, result.Duration, 1e-9)
}

func TestStopLinks(t *testing.T) {
	f := newFixture(t, timetable.ModelTimetable)
	walking := f.mode(t, ctdf.TransportModeWalking)
	busMode := f.mode(t, bus)

	calc := cost.NewCalculator(f.graph, f.tables, allModes, defaultOptions())

	result, ok := calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.access, EdgeMode: walking, Time: 480})
	require.True(t, ok)
	assert.InDelta(t, 1, result.Duration, 1e-9)

	_, ok = calc.Cost(cost.Query{Position: ctdf.RoadVertex(1), Mode: walking, Edge: f.access, EdgeMode: busMode, Time: 480})
	assert.False(t, ok)
}

func TestForwardTimetable(t *testing.T) {
	f := newFixture(t, timetable.ModelTimetable)
	walking := f.mode(t, ctdf.TransportModeWalking)
	busMode := f.mode(t, bus)

	calc := cost.NewCalculator(f.graph, f.tables, allModes, defaultOptions())

	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: walking, Edge: f.transit, EdgeMode: busMode, Time: 485})
	require.True(t, ok)
	assert.Equal(t, int64(2), result.TripID)
	assert.InDelta(t, 25, result.Wait, 1e-9)
	assert.InDelta(t, 35, result.Duration, 1e-9)

	result, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 1, Edge: f.transit, EdgeMode: busMode, Time: 480})
	require.True(t, ok)
	assert.Equal(t, int64(1), result.TripID, "staying on the trip needs no transfer time")
	assert.Zero(t, result.Wait)

	result, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 99, Edge: f.transit, EdgeMode: busMode, Time: 479})
	require.True(t, ok)
	assert.Equal(t, int64(2), result.TripID, "trip 1 leaves before the minimum transfer time")
	assert.InDelta(t, 31, result.Wait, 1e-9)

	_, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: walking, Edge: f.transit, EdgeMode: busMode, Time: 511})
	assert.False(t, ok, "no departure left")
}

func TestReverseTimetable(t *testing.T) {
	f := newFixture(t, timetable.ModelTimetable)
	walking := f.mode(t, ctdf.TransportModeWalking)
	busMode := f.mode(t, bus)

	options := defaultOptions()
	options.Reversed = true
	calc := cost.NewCalculator(f.graph, f.tables, allModes, options)

	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(101), Mode: walking, Edge: f.transit, EdgeMode: busMode, Time: 525})
	require.True(t, ok)
	assert.Equal(t, int64(2), result.TripID)
	assert.InDelta(t, 15, result.Duration, 1e-9)
	assert.InDelta(t, 5, result.Shift, 1e-9, "slack before the walk is a shift")
	assert.Zero(t, result.Wait)

	result, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(101), Mode: busMode, TripID: 99, Edge: f.transit, EdgeMode: busMode, Time: 521})
	require.True(t, ok)
	assert.Equal(t, int64(1), result.TripID)
	assert.InDelta(t, 41, result.Duration, 1e-9)
	assert.InDelta(t, 31, result.Wait, 1e-9, "slack before another trip is a transfer wait")
	assert.Zero(t, result.Shift)
}

func TestFrequencyModel(t *testing.T) {
	f := newFixture(t, timetable.ModelFrequency)
	walking := f.mode(t, ctdf.TransportModeWalking)
	busMode := f.mode(t, bus)

	options := defaultOptions()
	options.Model = timetable.ModelFrequency
	calc := cost.NewCalculator(f.graph, f.tables, allModes, options)

	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: walking, Edge: f.transit, EdgeMode: busMode, Time: 480})
	require.True(t, ok)
	assert.InDelta(t, 11, result.Duration, 1e-9)
	assert.InDelta(t, 5, result.Wait, 1e-9)
	assert.Equal(t, int64(7), result.TripID)

	result, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 7, Edge: f.transit, EdgeMode: busMode, Time: 480})
	require.True(t, ok)
	assert.InDelta(t, 6, result.Duration, 1e-9)

	_, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: walking, Edge: f.transit, EdgeMode: busMode, Time: 700})
	assert.False(t, ok, "outside the service window")
}

func TestForwardTimetable_DwellOnTrip(t *testing.T) {
	f := newFixtureWith(t, timetable.ModelTimetable, func(tb *timetable.Builder, key timetable.Key) {
		tb.AddDeparture(key, timetable.Departure{TripID: 2, Departure: 490, Arrival: 520})
		tb.AddDeparture(key, timetable.Departure{TripID: 1, Departure: 491, Arrival: 500})
		tb.AddDeparture(key, timetable.Departure{TripID: 3, Departure: 500, Arrival: 510})
	})
	busMode := f.mode(t, bus)

	calc := cost.NewCalculator(f.graph, f.tables, allModes, defaultOptions())

	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 1, Edge: f.transit, EdgeMode: busMode, Time: 490})
	require.True(t, ok)
	assert.Equal(t, int64(1), result.TripID, "the rider stays on board through the dwell")
	assert.InDelta(t, 10, result.Duration, 1e-9)
	assert.InDelta(t, 1, result.Wait, 1e-9)

	result, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 1, Edge: f.transit, EdgeMode: busMode, Time: 492})
	require.True(t, ok)
	assert.Equal(t, int64(3), result.TripID, "trip 1 has already left")
	assert.InDelta(t, 18, result.Duration, 1e-9)
}

func TestForwardTimetable_FasterTransferBeatsStayingOn(t *testing.T) {
	f := newFixtureWith(t, timetable.ModelTimetable, func(tb *timetable.Builder, key timetable.Key) {
		tb.AddDeparture(key, timetable.Departure{TripID: 1, Departure: 500, Arrival: 540})
		tb.AddDeparture(key, timetable.Departure{TripID: 4, Departure: 495, Arrival: 505})
	})
	busMode := f.mode(t, bus)

	calc := cost.NewCalculator(f.graph, f.tables, allModes, defaultOptions())

	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 1, Edge: f.transit, EdgeMode: busMode, Time: 490})
	require.True(t, ok)
	assert.Equal(t, int64(4), result.TripID)
	assert.InDelta(t, 5, result.Wait, 1e-9)
	assert.InDelta(t, 15, result.Duration, 1e-9)
}

func TestReverseTimetable_DwellOnTrip(t *testing.T) {
	f := newFixtureWith(t, timetable.ModelTimetable, func(tb *timetable.Builder, key timetable.Key) {
		tb.AddDeparture(key, timetable.Departure{TripID: 3, Departure: 470, Arrival: 480})
		tb.AddDeparture(key, timetable.Departure{TripID: 1, Departure: 480, Arrival: 489})
		tb.AddDeparture(key, timetable.Departure{TripID: 2, Departure: 485, Arrival: 490})
	})
	busMode := f.mode(t, bus)

	options := defaultOptions()
	options.Reversed = true
	calc := cost.NewCalculator(f.graph, f.tables, allModes, options)

	// Trip 1 leaves stop 101 at 490 after a one minute dwell.
	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(101), Mode: busMode, TripID: 1, Edge: f.transit, EdgeMode: busMode, Time: 490})
	require.True(t, ok)
	assert.Equal(t, int64(1), result.TripID)
	assert.InDelta(t, 10, result.Duration, 1e-9)
	assert.InDelta(t, 1, result.Wait, 1e-9)
	assert.Zero(t, result.Shift)

	result, ok = calc.Cost(cost.Query{Position: ctdf.StopVertex(101), Mode: busMode, TripID: 9, Edge: f.transit, EdgeMode: busMode, Time: 490})
	require.True(t, ok)
	assert.Equal(t, int64(3), result.TripID, "trips 1 and 2 arrive within the minimum transfer time")
	assert.InDelta(t, 10, result.Wait, 1e-9)
}

func TestFrequencyModel_StaysOnOverlappingWindow(t *testing.T) {
	f := newFixtureWith(t, timetable.ModelFrequency, func(tb *timetable.Builder, key timetable.Key) {
		tb.AddFrequency(key, timetable.Frequency{TripID: 7, Start: 420, End: 600, Headway: 10, TravelTime: 6})
		tb.AddFrequency(key, timetable.Frequency{TripID: 8, Start: 470, End: 600, Headway: 20, TravelTime: 8})
	})
	walking := f.mode(t, ctdf.TransportModeWalking)
	busMode := f.mode(t, bus)

	for _, reversed := range []bool{false, true} {
		options := defaultOptions()
		options.Model = timetable.ModelFrequency
		options.Reversed = reversed
		calc := cost.NewCalculator(f.graph, f.tables, allModes, options)

		result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: busMode, TripID: 7, Edge: f.transit, EdgeMode: busMode, Time: 480})
		require.True(t, ok)
		assert.Equal(t, int64(7), result.TripID)
		assert.InDelta(t, 6, result.Duration, 1e-9, "no second headway on board")
		assert.Zero(t, result.Wait)
	}

	options := defaultOptions()
	options.Model = timetable.ModelFrequency
	calc := cost.NewCalculator(f.graph, f.tables, allModes, options)
	result, ok := calc.Cost(cost.Query{Position: ctdf.StopVertex(100), Mode: walking, Edge: f.transit, EdgeMode: busMode, Time: 480})
	require.True(t, ok)
	assert.Equal(t, int64(8), result.TripID, "boarding takes the latest window")
	assert.InDelta(t, 18, result.Duration, 1e-9)
}
