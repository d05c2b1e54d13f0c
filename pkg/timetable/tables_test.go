package timetable_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/timetable"
)

var (
	serviceDate = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	busEdge     = timetable.Key{From: 100, To: 101, Mode: 5}
)

func departuresTable(t *testing.T) *timetable.Tables {
	t.Helper()

	b := timetable.NewBuilder(serviceDate, timetable.ModelTimetable)
	b.AddDeparture(busEdge, timetable.Departure{TripID: 3, Departure: 540, Arrival: 555})
	b.AddDeparture(busEdge, timetable.Departure{TripID: 1, Departure: 480, Arrival: 490})
	b.AddDeparture(busEdge, timetable.Departure{TripID: 2, Departure: 510, Arrival: 520})
	b.AddDeparture(busEdge, timetable.Departure{TripID: 4, Departure: 510, Arrival: 525})

	tables, err := b.Build()
	require.NoError(t, err)
	return tables
}

func TestNextDeparture(t *testing.T) {
	tables := departuresTable(t)

	tests := []struct {
		name   string
		at     float64
		prefer int64
		trip   int64
		found  bool
	}{
		{"exact departure", 480, 0, 1, true},
		{"between departures", 485, 0, 2, true},
		{"same minute prefers the running trip", 485, 4, 4, true},
		{"after last departure", 541, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			departure, ok := tables.NextDeparture(busEdge, tt.at, tt.prefer)
			require.Equal(t, tt.found, ok)
			assert.Equal(t, tt.trip, departure.TripID)
		})
	}

	_, ok := tables.NextDeparture(timetable.Key{From: 101, To: 100, Mode: 5}, 0, 0)
	assert.False(t, ok, "unknown edge has no departures")
}

func TestLastArrival(t *testing.T) {
	tables := departuresTable(t)

	arrival, ok := tables.LastArrival(busEdge, 530, 0)
	require.True(t, ok)
	assert.Equal(t, int64(4), arrival.TripID)
	assert.Equal(t, 510.0, arrival.Departure)

	arrival, ok = tables.LastArrival(busEdge, 520, 0)
	require.True(t, ok)
	assert.Equal(t, int64(2), arrival.TripID)

	_, ok = tables.LastArrival(busEdge, 489, 0)
	assert.False(t, ok)
}

func TestTripLookups(t *testing.T) {
	tables := departuresTable(t)

	departure, ok := tables.TripDeparture(busEdge, 4, 481)
	require.True(t, ok, "skips earlier departures of other trips")
	assert.Equal(t, 510.0, departure.Departure)

	_, ok = tables.TripDeparture(busEdge, 1, 481)
	assert.False(t, ok, "trip 1 has already left")

	arrival, ok := tables.TripArrival(busEdge, 2, 530)
	require.True(t, ok, "skips later arrivals of other trips")
	assert.Equal(t, 520.0, arrival.Arrival)

	_, ok = tables.TripArrival(busEdge, 3, 530)
	assert.False(t, ok)
}

func TestFrequencies(t *testing.T) {
	b := timetable.NewBuilder(serviceDate, timetable.ModelFrequency)
	b.AddFrequency(busEdge, timetable.Frequency{TripID: 7, Start: 360, End: 600, Headway: 10, TravelTime: 6})
	b.AddFrequency(busEdge, timetable.Frequency{TripID: 8, Start: 900, End: 1200, Headway: 20, TravelTime: 6})
	tables, err := b.Build()
	require.NoError(t, err)

	f, ok := tables.ActiveFrequency(busEdge, 480)
	require.True(t, ok)
	assert.Equal(t, int64(7), f.TripID)

	_, ok = tables.ActiveFrequency(busEdge, 700)
	assert.False(t, ok, "no service between windows")

	f, ok = tables.ActiveReverseFrequency(busEdge, 1000)
	require.True(t, ok)
	assert.Equal(t, int64(8), f.TripID)

	_, ok = tables.ActiveReverseFrequency(busEdge, 300)
	assert.False(t, ok)

	f, ok = tables.TripFrequency(busEdge, 7, 480)
	require.True(t, ok)
	assert.Equal(t, 10.0, f.Headway)

	_, ok = tables.TripFrequency(busEdge, 8, 480)
	assert.False(t, ok, "window of trip 8 has not started")

	assert.True(t, tables.Serves(busEdge))
	assert.Equal(t, 2, tables.Stats().Frequencies)
}

func TestSpeedAt(t *testing.T) {
	b := timetable.NewBuilder(serviceDate, timetable.ModelTimetable)
	b.AddSpeedPeriod(42, ctdf.SpeedRuleCar, 420, 540, 20)
	b.AddSpeedPeriod(42, ctdf.SpeedRuleCar, 540, 1080, 45)
	tables, err := b.Build()
	require.NoError(t, err)

	speed, ok := tables.SpeedAt(42, ctdf.SpeedRuleCar, 480)
	require.True(t, ok)
	assert.Equal(t, 20.0, speed)

	speed, ok = tables.SpeedAt(42, ctdf.SpeedRuleCar, 540)
	require.True(t, ok)
	assert.Equal(t, 45.0, speed)

	_, ok = tables.SpeedAt(42, ctdf.SpeedRuleCar, 1100)
	assert.False(t, ok)

	_, ok = tables.SpeedAt(42, ctdf.SpeedRuleBicycle, 480)
	assert.False(t, ok)
}

func TestBuild_RejectsInvalidRows(t *testing.T) {
	b := timetable.NewBuilder(serviceDate, timetable.ModelTimetable)
	b.AddDeparture(busEdge, timetable.Departure{TripID: 1, Departure: 500, Arrival: 490})
	_, err := b.Build()
	require.ErrorIs(t, err, timetable.ErrInvalidTimetable)

	b = timetable.NewBuilder(serviceDate, timetable.ModelFrequency)
	b.AddFrequency(busEdge, timetable.Frequency{TripID: 1, Start: 0, End: 10})
	_, err = b.Build()
	require.ErrorIs(t, err, timetable.ErrInvalidTimetable)

	b = timetable.NewBuilder(serviceDate, timetable.ModelTimetable)
	b.AddSpeedPeriod(1, ctdf.SpeedRuleCar, 0, 100, 30)
	b.AddSpeedPeriod(1, ctdf.SpeedRuleCar, 50, 150, 30)
	_, err = b.Build()
	require.ErrorIs(t, err, timetable.ErrInvalidTimetable)
}
