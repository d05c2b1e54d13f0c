// Package timetable holds the time-dependent data of one service date:
// public transport departures or frequencies for every transit edge and mode,
// and road speed profiles. Times are minutes from midnight.
package timetable

import (
	"time"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"golang.org/x/exp/slices"
)

type Model int

const (
	ModelTimetable Model = 0
	ModelFrequency Model = 1
)

func (m Model) String() string {
	if m == ModelFrequency {
		return "frequency"
	}
	return "timetable"
}

// Key identifies a transit edge (by its stops) served by a transport mode.
type Key struct {
	From int64
	To   int64
	Mode int64
}

type Departure struct {
	TripID    int64
	Departure float64
	Arrival   float64
}

// Frequency is a headway based service window on a transit edge.
type Frequency struct {
	TripID     int64
	Start      float64
	End        float64
	Headway    float64
	TravelTime float64
}

type SpeedPeriod struct {
	Begin    float64
	Duration float64
	Speed    float64 // km/h
}

type speedKey struct {
	section int64
	rule    ctdf.SpeedRule
}

// Tables is immutable once built and may be shared between searches.
type Tables struct {
	Date  time.Time
	Model Model

	departures   map[Key][]Departure
	arrivals     map[Key][]Departure
	frequencies  map[Key][]Frequency
	rfrequencies map[Key][]Frequency
	speeds       map[speedKey][]SpeedPeriod
}

// NextDeparture returns the first departure at or after at. Among departures
// leaving at the same minute preferTrip wins.
func (t *Tables) NextDeparture(key Key, at float64, preferTrip int64) (Departure, bool) {
	entries := t.departures[key]
	i, _ := slices.BinarySearchFunc(entries, at, func(d Departure, at float64) int {
		if d.Departure < at {
			return -1
		}
		return 1
	})
	if i == len(entries) {
		return Departure{}, false
	}

	chosen := entries[i]
	for j := i; j < len(entries) && entries[j].Departure == chosen.Departure; j++ {
		if entries[j].TripID == preferTrip {
			return entries[j], true
		}
	}
	return chosen, true
}

// LastArrival returns the last arrival at or before at. Among arrivals at the
// same minute preferTrip wins.
func (t *Tables) LastArrival(key Key, at float64, preferTrip int64) (Departure, bool) {
	entries := t.arrivals[key]
	i, _ := slices.BinarySearchFunc(entries, at, func(d Departure, at float64) int {
		if d.Arrival <= at {
			return -1
		}
		return 1
	})
	if i == 0 {
		return Departure{}, false
	}

	chosen := entries[i-1]
	for j := i - 1; j >= 0 && entries[j].Arrival == chosen.Arrival; j-- {
		if entries[j].TripID == preferTrip {
			return entries[j], true
		}
	}
	return chosen, true
}

// TripDeparture returns the first departure of trip at or after at.
func (t *Tables) TripDeparture(key Key, trip int64, at float64) (Departure, bool) {
	entries := t.departures[key]
	i, _ := slices.BinarySearchFunc(entries, at, func(d Departure, at float64) int {
		if d.Departure < at {
			return -1
		}
		return 1
	})
	for ; i < len(entries); i++ {
		if entries[i].TripID == trip {
			return entries[i], true
		}
	}
	return Departure{}, false
}

// TripArrival returns the last arrival of trip at or before at.
func (t *Tables) TripArrival(key Key, trip int64, at float64) (Departure, bool) {
	entries := t.arrivals[key]
	i, _ := slices.BinarySearchFunc(entries, at, func(d Departure, at float64) int {
		if d.Arrival <= at {
			return -1
		}
		return 1
	})
	for i--; i >= 0; i-- {
		if entries[i].TripID == trip {
			return entries[i], true
		}
	}
	return Departure{}, false
}

// TripFrequency returns the window of trip running at at.
func (t *Tables) TripFrequency(key Key, trip int64, at float64) (Frequency, bool) {
	for _, f := range t.frequencies[key] {
		if f.TripID == trip && f.Start <= at && f.End >= at {
			return f, true
		}
	}
	return Frequency{}, false
}

// ActiveFrequency returns the latest window starting at or before at that is still running.
func (t *Tables) ActiveFrequency(key Key, at float64) (Frequency, bool) {
	entries := t.frequencies[key]
	i, _ := slices.BinarySearchFunc(entries, at, func(f Frequency, at float64) int {
		if f.Start <= at {
			return -1
		}
		return 1
	})
	for j := i - 1; j >= 0; j-- {
		if entries[j].End >= at {
			return entries[j], true
		}
	}
	return Frequency{}, false
}

// ActiveReverseFrequency returns the earliest window ending at or after at that had already started.
func (t *Tables) ActiveReverseFrequency(key Key, at float64) (Frequency, bool) {
	entries := t.rfrequencies[key]
	i, _ := slices.BinarySearchFunc(entries, at, func(f Frequency, at float64) int {
		if f.End < at {
			return -1
		}
		return 1
	})
	for j := i; j < len(entries); j++ {
		if entries[j].Start <= at {
			return entries[j], true
		}
	}
	return Frequency{}, false
}

// SpeedAt returns the profile speed of a road section for a speed rule at a time of day.
func (t *Tables) SpeedAt(section int64, rule ctdf.SpeedRule, at float64) (float64, bool) {
	periods := t.speeds[speedKey{section: section, rule: rule}]
	i, _ := slices.BinarySearchFunc(periods, at, func(p SpeedPeriod, at float64) int {
		if p.Begin <= at {
			return -1
		}
		return 1
	})
	if i == 0 {
		return 0, false
	}

	period := periods[i-1]
	if at >= period.Begin+period.Duration {
		return 0, false
	}
	return period.Speed, true
}

// Serves reports whether the mode has any data on the transit edge.
func (t *Tables) Serves(key Key) bool {
	return len(t.departures[key]) > 0 || len(t.frequencies[key]) > 0
}

type Stats struct {
	Departures  int
	Frequencies int
	Speeds      int
}

func (t *Tables) Stats() Stats {
	var stats Stats
	for _, entries := range t.departures {
		stats.Departures += len(entries)
	}
	for _, entries := range t.frequencies {
		stats.Frequencies += len(entries)
	}
	for _, periods := range t.speeds {
		stats.Speeds += len(periods)
	}
	return stats
}
