package timetable

import (
	"errors"
	"fmt"
	"time"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"golang.org/x/exp/slices"
)

var ErrInvalidTimetable = errors.New("timetable: invalid temporal data")

type Builder struct {
	date  time.Time
	model Model

	departures  map[Key][]Departure
	frequencies map[Key][]Frequency
	speeds      map[speedKey][]SpeedPeriod

	problems []error
}

func NewBuilder(date time.Time, model Model) *Builder {
	return &Builder{
		date:        date,
		model:       model,
		departures:  map[Key][]Departure{},
		frequencies: map[Key][]Frequency{},
		speeds:      map[speedKey][]SpeedPeriod{},
	}
}

func (b *Builder) AddDeparture(key Key, departure Departure) {
	if departure.Arrival < departure.Departure {
		b.problems = append(b.problems, fmt.Errorf("trip %d on %d->%d arrives before it departs", departure.TripID, key.From, key.To))
		return
	}
	b.departures[key] = append(b.departures[key], departure)
}

func (b *Builder) AddFrequency(key Key, frequency Frequency) {
	switch {
	case frequency.End < frequency.Start:
		b.problems = append(b.problems, fmt.Errorf("trip %d on %d->%d ends before it starts", frequency.TripID, key.From, key.To))
		return
	case frequency.Headway <= 0:
		b.problems = append(b.problems, fmt.Errorf("trip %d on %d->%d has no headway", frequency.TripID, key.From, key.To))
		return
	case frequency.TravelTime < 0:
		b.problems = append(b.problems, fmt.Errorf("trip %d on %d->%d has a negative travel time", frequency.TripID, key.From, key.To))
		return
	}
	b.frequencies[key] = append(b.frequencies[key], frequency)
}

func (b *Builder) AddSpeedPeriod(section int64, rule ctdf.SpeedRule, begin float64, end float64, speed float64) {
	if end <= begin || speed <= 0 {
		b.problems = append(b.problems, fmt.Errorf("speed period of section %d [%v, %v] speed %v is invalid", section, begin, end, speed))
		return
	}
	key := speedKey{section: section, rule: rule}
	b.speeds[key] = append(b.speeds[key], SpeedPeriod{Begin: begin, Duration: end - begin, Speed: speed})
}

// Build sorts every index once. The builder must not be reused afterwards.
func (b *Builder) Build() (*Tables, error) {
	if len(b.problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTimetable, errors.Join(b.problems...))
	}

	tables := &Tables{
		Date:         b.date,
		Model:        b.model,
		departures:   b.departures,
		arrivals:     make(map[Key][]Departure, len(b.departures)),
		frequencies:  b.frequencies,
		rfrequencies: make(map[Key][]Frequency, len(b.frequencies)),
		speeds:       b.speeds,
	}

	for key, entries := range b.departures {
		slices.SortStableFunc(entries, func(a, b Departure) int {
			return compareFloat(a.Departure, b.Departure)
		})

		arrivals := slices.Clone(entries)
		slices.SortStableFunc(arrivals, func(a, b Departure) int {
			return compareFloat(a.Arrival, b.Arrival)
		})
		tables.arrivals[key] = arrivals
	}

	for key, entries := range b.frequencies {
		slices.SortStableFunc(entries, func(a, b Frequency) int {
			return compareFloat(a.Start, b.Start)
		})

		reverse := slices.Clone(entries)
		slices.SortStableFunc(reverse, func(a, b Frequency) int {
			return compareFloat(a.End, b.End)
		})
		tables.rfrequencies[key] = reverse
	}

	for key, periods := range b.speeds {
		slices.SortStableFunc(periods, func(a, b SpeedPeriod) int {
			return compareFloat(a.Begin, b.Begin)
		})
		for i := 1; i < len(periods); i++ {
			if periods[i-1].Begin+periods[i-1].Duration > periods[i].Begin {
				return nil, fmt.Errorf("%w: overlapping speed periods on section %d", ErrInvalidTimetable, key.section)
			}
		}
	}

	return tables, nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
