package dataimporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
)

const (
	FileTransportModes  = "transport_modes.csv"
	FileRoadNodes       = "road_nodes.csv"
	FileRoadEdges       = "road_edges.csv"
	FileStops           = "stops.csv"
	FileStopLinks       = "stop_links.csv"
	FileTransitSections = "transit_sections.csv"
	FileRestrictions    = "restrictions.csv"
	FileStopTimes       = "stop_times.csv"
	FileFrequencies     = "frequencies.csv"
	FileCalendar        = "calendar.csv"
	FileCalendarDates   = "calendar_dates.csv"
	FileSpeedProfiles   = "speed_profiles.csv"
)

func init() {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		return r
	})
}

// CSVSource reads a network and its timetables from a directory of CSV
// files. Only the road files are mandatory.
type CSVSource struct {
	Directory string
}

func NewCSVSource(directory string) *CSVSource {
	return &CSVSource{Directory: directory}
}

func (s *CSVSource) LoadNetwork(ctx context.Context) (*network.Graph, []automaton.Restriction, error) {
	var records networkRecords
	var restrictionRecords []Restriction

	fileMap := []struct {
		name        string
		destination interface{}
		required    bool
	}{
		{FileTransportModes, &records.Modes, false},
		{FileRoadNodes, &records.RoadNodes, true},
		{FileRoadEdges, &records.RoadEdges, true},
		{FileStops, &records.Stops, false},
		{FileStopLinks, &records.StopLinks, false},
		{FileTransitSections, &records.TransitSections, false},
		{FileRestrictions, &restrictionRecords, false},
	}
	for _, file := range fileMap {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := s.readFile(file.name, file.destination, file.required); err != nil {
			return nil, nil, err
		}
	}

	if len(records.Modes) == 0 {
		records.Modes = ctdf.DefaultTransportModes()
	}

	graph, err := records.build()
	if err != nil {
		return nil, nil, err
	}

	restrictions, err := convertRestrictions(restrictionRecords)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", FileRestrictions, err)
	}

	return graph, restrictions, nil
}

func (s *CSVSource) LoadTables(ctx context.Context, date time.Time, model timetable.Model) (*timetable.Tables, error) {
	var calendars []Calendar
	var calendarDates []CalendarDate
	var speeds []SpeedProfile

	if err := s.readFile(FileCalendar, &calendars, false); err != nil {
		return nil, err
	}
	if err := s.readFile(FileCalendarDates, &calendarDates, false); err != nil {
		return nil, err
	}
	if err := s.readFile(FileSpeedProfiles, &speeds, false); err != nil {
		return nil, err
	}
	services := NewServiceCalendar(calendars, calendarDates)

	builder := timetable.NewBuilder(date, model)

	switch model {
	case timetable.ModelFrequency:
		var frequencies []Frequency
		if err := s.readFile(FileFrequencies, &frequencies, false); err != nil {
			return nil, err
		}
		if err := addFrequencies(builder, services, date, frequencies); err != nil {
			return nil, err
		}
	default:
		var stopTimes []StopTime
		if err := s.readFile(FileStopTimes, &stopTimes, false); err != nil {
			return nil, err
		}
		if err := addStopTimes(builder, services, date, stopTimes); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := addSpeedProfiles(builder, speeds); err != nil {
		return nil, err
	}

	return builder.Build()
}

func (s *CSVSource) Close() error {
	return nil
}

func (s *CSVSource) readFile(name string, destination interface{}, required bool) error {
	path := filepath.Join(s.Directory, name)

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		log.Debug().Str("file", path).Msg("Optional file missing")
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	log.Debug().Str("file", path).Msg("Loading file")
	if err := gocsv.Unmarshal(file, destination); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func addStopTimes(builder *timetable.Builder, services *ServiceCalendar, date time.Time, stopTimes []StopTime) error {
	for _, row := range stopTimes {
		runs, err := services.Runs(row.ServiceID, date)
		if err != nil {
			return err
		}
		if !runs {
			continue
		}

		departure, err := ParseClock(row.DepartureTime)
		if err != nil {
			return fmt.Errorf("trip %d: %w", row.TripID, err)
		}
		arrival, err := ParseClock(row.ArrivalTime)
		if err != nil {
			return fmt.Errorf("trip %d: %w", row.TripID, err)
		}

		builder.AddDeparture(
			timetable.Key{From: row.FromStop, To: row.ToStop, Mode: row.Mode},
			timetable.Departure{TripID: row.TripID, Departure: departure, Arrival: arrival},
		)
	}
	return nil
}

func addFrequencies(builder *timetable.Builder, services *ServiceCalendar, date time.Time, frequencies []Frequency) error {
	for _, row := range frequencies {
		runs, err := services.Runs(row.ServiceID, date)
		if err != nil {
			return err
		}
		if !runs {
			continue
		}

		start, err := ParseClock(row.StartTime)
		if err != nil {
			return fmt.Errorf("trip %d: %w", row.TripID, err)
		}
		end, err := ParseClock(row.EndTime)
		if err != nil {
			return fmt.Errorf("trip %d: %w", row.TripID, err)
		}

		builder.AddFrequency(
			timetable.Key{From: row.FromStop, To: row.ToStop, Mode: row.Mode},
			timetable.Frequency{
				TripID:     row.TripID,
				Start:      start,
				End:        end,
				Headway:    float64(row.HeadwaySeconds) / 60,
				TravelTime: float64(row.TravelSeconds) / 60,
			},
		)
	}
	return nil
}

func addSpeedProfiles(builder *timetable.Builder, speeds []SpeedProfile) error {
	for _, row := range speeds {
		begin, err := ParseClock(row.BeginTime)
		if err != nil {
			return fmt.Errorf("section %d: %w", row.SectionID, err)
		}
		end, err := ParseClock(row.EndTime)
		if err != nil {
			return fmt.Errorf("section %d: %w", row.SectionID, err)
		}
		builder.AddSpeedPeriod(row.SectionID, ctdf.SpeedRule(row.SpeedRule), begin, end, row.AverageSpeed)
	}
	return nil
}
