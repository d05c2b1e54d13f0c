package dataimporter

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
)

// PostgresSource reads a tempus schema database.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = time.Minute

	err = backoff.RetryNotify(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}, backoff.WithContext(retryBackoff, ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("retry", wait.String()).Msg("Database not ready")
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	log.Info().Msg("Postgres source connected")

	return &PostgresSource{db: db}, nil
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}

const modesQuery = `
SELECT id, name, public_transport, COALESCE(gtfs_route_type, -1), COALESCE(traffic_rules, 0), COALESCE(speed_rule, 0),
       COALESCE(need_parking, false), COALESCE(shared_vehicle, false), COALESCE(return_shared_vehicle, false)
FROM tempus.transport_mode`

const roadNodesQuery = `
SELECT n.id, ST_X(n.geom), ST_Y(n.geom),
       EXISTS (
         SELECT 1 FROM tempus.poi p, tempus.road_section s
         WHERE p.poi_type IN (2, 3) AND s.id = p.road_section_id
           AND n.id = CASE WHEN p.abscissa_road_section < 0.5 THEN s.node_from ELSE s.node_to END
       )
FROM tempus.road_node n`

const roadSectionsQuery = `
SELECT id, node_from, node_to, length, COALESCE(traffic_rules_ft, 0), COALESCE(traffic_rules_tf, 0), COALESCE(car_speed_limit, 0)
FROM tempus.road_section`

const stopsQuery = `
SELECT st.id, st.name, COALESCE((SELECT MIN(network_id) FROM tempus.pt_section WHERE stop_from = st.id OR stop_to = st.id), 0),
       ST_X(st.geom), ST_Y(st.geom), s.node_from, s.node_to, s.length * st.abscissa_road_section, s.length * (1 - st.abscissa_road_section)
FROM tempus.pt_stop st, tempus.road_section s
WHERE s.id = st.road_section_id`

const transitSectionsQuery = `
SELECT stop_from, stop_to FROM tempus.pt_section`

const restrictionsQuery = `
SELECT r.id, array_to_string(r.sections, ' '), COALESCE(p.traffic_rules, 0), COALESCE(p.time_value::text, 'inf')
FROM tempus.road_restriction r
LEFT JOIN tempus.road_restriction_time_penalty p ON p.restriction_id = r.id`

// activeServices selects the services running on $1, a date.
const activeServices = `
pt_trip.service_id IN (
  (WITH calend AS (
     SELECT service_id, start_date, end_date, ARRAY[sunday, monday, tuesday, wednesday, thursday, friday, saturday] AS days
     FROM tempus.pt_calendar)
   SELECT service_id FROM calend
   WHERE days[EXTRACT(dow FROM $1::date)::int + 1] AND start_date <= $1::date AND end_date >= $1::date)
  EXCEPT (SELECT service_id FROM tempus.pt_calendar_date WHERE calendar_date = $1::date AND exception_type = 2)
  UNION (SELECT service_id FROM tempus.pt_calendar_date WHERE calendar_date = $1::date AND exception_type = 1)
)`

const timetableQuery = `
SELECT t1.stop_id, t2.stop_id, t1.trip_id, pt_route.transport_mode,
       extract(epoch from t1.departure_time)/60, extract(epoch from t2.arrival_time)/60
FROM tempus.pt_stop_time t1, tempus.pt_stop_time t2, tempus.pt_trip, tempus.pt_route
WHERE t1.trip_id = t2.trip_id AND t1.stop_sequence + 1 = t2.stop_sequence
  AND pt_trip.id = t1.trip_id AND pt_route.id = pt_trip.route_id
  AND ` + activeServices

const frequencyQuery = `
SELECT t1.stop_id, t2.stop_id, t1.trip_id, pt_route.transport_mode,
       extract(epoch from pt_frequency.start_time)/60, extract(epoch from pt_frequency.end_time)/60,
       pt_frequency.headway_secs/60.0, extract(epoch from t2.departure_time - t1.arrival_time)/60
FROM tempus.pt_stop_time t1, tempus.pt_stop_time t2, tempus.pt_trip, tempus.pt_frequency, tempus.pt_route
WHERE t1.trip_id = t2.trip_id AND t1.stop_sequence + 1 = t2.stop_sequence
  AND pt_trip.id = t1.trip_id AND pt_frequency.trip_id = t1.trip_id AND pt_route.id = pt_trip.route_id
  AND ` + activeServices

const speedProfilesQuery = `
SELECT road_section_id, speed_rule, begin_time::float8, end_time::float8, average_speed::float8
FROM tempus.road_section_speed ss, tempus.road_daily_profile p
WHERE p.profile_id = ss.profile_id`

func (s *PostgresSource) LoadNetwork(ctx context.Context) (*network.Graph, []automaton.Restriction, error) {
	var records networkRecords

	if err := s.query(ctx, modesQuery, nil, func(rows *sql.Rows) error {
		var mode ctdf.TransportMode
		var routeType int
		var needParking, shared, returned bool
		if err := rows.Scan(&mode.ID, &mode.Name, &mode.PublicTransport, &routeType, &mode.TrafficRules, &mode.SpeedRule, &needParking, &shared, &returned); err != nil {
			return err
		}
		mode.PrivateVehicle = needParking && !shared
		mode.MustBeReturned = shared && returned
		mode.Type = modeType(routeType, mode.SpeedRule)
		records.Modes = append(records.Modes, mode)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("transport modes: %w", err)
	}

	if err := s.query(ctx, roadNodesQuery, nil, func(rows *sql.Rows) error {
		var node RoadNode
		if err := rows.Scan(&node.ID, &node.X, &node.Y, &node.SharedVehicleStation); err != nil {
			return err
		}
		records.RoadNodes = append(records.RoadNodes, node)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("road nodes: %w", err)
	}

	sections := map[int64]sectionEnds{}
	if err := s.query(ctx, roadSectionsQuery, nil, func(rows *sql.Rows) error {
		var section roadSection
		if err := rows.Scan(&section.ID, &section.From, &section.To, &section.Length, &section.RulesFT, &section.RulesTF, &section.SpeedLimit); err != nil {
			return err
		}
		sections[section.ID] = sectionEnds{From: section.From, To: section.To}
		records.RoadEdges = append(records.RoadEdges, section.edges()...)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("road sections: %w", err)
	}

	if err := s.query(ctx, stopsQuery, nil, func(rows *sql.Rows) error {
		var stop Stop
		var from, to int64
		var toFrom, toTo float64
		if err := rows.Scan(&stop.ID, &stop.Name, &stop.NetworkID, &stop.X, &stop.Y, &from, &to, &toFrom, &toTo); err != nil {
			return err
		}
		records.Stops = append(records.Stops, stop)
		records.StopLinks = append(records.StopLinks,
			StopLink{StopID: stop.ID, RoadNodeID: from, Length: toFrom},
			StopLink{StopID: stop.ID, RoadNodeID: to, Length: toTo},
		)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("stops: %w", err)
	}

	if err := s.query(ctx, transitSectionsQuery, nil, func(rows *sql.Rows) error {
		var section TransitSection
		if err := rows.Scan(&section.FromStop, &section.ToStop); err != nil {
			return err
		}
		records.TransitSections = append(records.TransitSections, section)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("transit sections: %w", err)
	}

	var restrictionRecords []Restriction
	if err := s.query(ctx, restrictionsQuery, nil, func(rows *sql.Rows) error {
		var record Restriction
		var sectionList string
		if err := rows.Scan(&record.ID, &sectionList, &record.TrafficRules, &record.Penalty); err != nil {
			return err
		}
		var ids IDList
		if err := ids.UnmarshalCSV(sectionList); err != nil {
			return err
		}

		edges, err := orientRestriction(ids, sections)
		if err != nil {
			log.Warn().Err(err).Int64("restriction", record.ID).Msg("Skipping restriction")
			return nil
		}
		record.RoadEdges = edges
		restrictionRecords = append(restrictionRecords, record)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("restrictions: %w", err)
	}

	graph, err := records.build()
	if err != nil {
		return nil, nil, err
	}
	restrictions, err := convertRestrictions(restrictionRecords)
	if err != nil {
		return nil, nil, err
	}

	return graph, restrictions, nil
}

func (s *PostgresSource) LoadTables(ctx context.Context, date time.Time, model timetable.Model) (*timetable.Tables, error) {
	builder := timetable.NewBuilder(date, model)
	day := date.Format(time.DateOnly)

	switch model {
	case timetable.ModelFrequency:
		if err := s.query(ctx, frequencyQuery, []any{day}, func(rows *sql.Rows) error {
			var key timetable.Key
			var frequency timetable.Frequency
			if err := rows.Scan(&key.From, &key.To, &frequency.TripID, &key.Mode, &frequency.Start, &frequency.End, &frequency.Headway, &frequency.TravelTime); err != nil {
				return err
			}
			builder.AddFrequency(key, frequency)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("frequencies: %w", err)
		}
	default:
		if err := s.query(ctx, timetableQuery, []any{day}, func(rows *sql.Rows) error {
			var key timetable.Key
			var departure timetable.Departure
			if err := rows.Scan(&key.From, &key.To, &departure.TripID, &key.Mode, &departure.Departure, &departure.Arrival); err != nil {
				return err
			}
			builder.AddDeparture(key, departure)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("timetable: %w", err)
		}
	}

	if err := s.query(ctx, speedProfilesQuery, nil, func(rows *sql.Rows) error {
		var section int64
		var rule ctdf.SpeedRule
		var begin, end, speed float64
		if err := rows.Scan(&section, &rule, &begin, &end, &speed); err != nil {
			return err
		}
		builder.AddSpeedPeriod(section, rule, begin, end, speed)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("speed profiles: %w", err)
	}

	return builder.Build()
}

func (s *PostgresSource) query(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

type roadSection struct {
	ID         int64
	From       int64
	To         int64
	Length     float64
	RulesFT    uint32
	RulesTF    uint32
	SpeedLimit float64
}

// edges splits a two-way section into directed road edges. The reverse
// direction carries the negated section id.
func (s roadSection) edges() []RoadEdge {
	var edges []RoadEdge
	if s.RulesFT != 0 {
		edges = append(edges, RoadEdge{
			ID: s.ID, SectionID: s.ID, Source: s.From, Target: s.To,
			Length: s.Length, TrafficRules: s.RulesFT, CarSpeedLimit: s.SpeedLimit,
		})
	}
	if s.RulesTF != 0 {
		edges = append(edges, RoadEdge{
			ID: -s.ID, SectionID: s.ID, Source: s.To, Target: s.From,
			Length: s.Length, TrafficRules: s.RulesTF, CarSpeedLimit: s.SpeedLimit,
		})
	}
	return edges
}

type sectionEnds struct {
	From int64
	To   int64
}

// orientRestriction maps a chain of undirected road sections onto directed
// edge ids by following the nodes the sections share.
func orientRestriction(chain []int64, sections map[int64]sectionEnds) ([]int64, error) {
	if len(chain) < 2 {
		return nil, fmt.Errorf("restriction needs at least two sections, got %d", len(chain))
	}

	first, ok := sections[chain[0]]
	if !ok {
		return nil, fmt.Errorf("unknown road section %d", chain[0])
	}
	second, ok := sections[chain[1]]
	if !ok {
		return nil, fmt.Errorf("unknown road section %d", chain[1])
	}

	var at int64
	edges := make([]int64, 0, len(chain))
	switch {
	case first.To == second.From || first.To == second.To:
		edges = append(edges, chain[0])
		at = first.To
	case first.From == second.From || first.From == second.To:
		edges = append(edges, -chain[0])
		at = first.From
	default:
		return nil, fmt.Errorf("road sections %d and %d are not adjacent", chain[0], chain[1])
	}

	for _, id := range chain[1:] {
		section, ok := sections[id]
		if !ok {
			return nil, fmt.Errorf("unknown road section %d", id)
		}
		switch at {
		case section.From:
			edges = append(edges, id)
			at = section.To
		case section.To:
			edges = append(edges, -id)
			at = section.From
		default:
			return nil, fmt.Errorf("road section %d does not continue from node %d", id, at)
		}
	}

	return edges, nil
}

// modeType names a mode from its GTFS route type, or from its speed rule
// for individual modes.
func modeType(routeType int, rule ctdf.SpeedRule) ctdf.TransportType {
	switch routeType {
	case 0:
		return ctdf.TransportTypeTram
	case 1:
		return ctdf.TransportTypeMetro
	case 2:
		return ctdf.TransportTypeTrain
	case 3:
		return ctdf.TransportTypeBus
	case 4:
		return ctdf.TransportTypeBoat
	case 5, 6:
		return ctdf.TransportTypeCableCar
	}

	switch rule {
	case ctdf.SpeedRulePedestrian, ctdf.SpeedRuleRoller:
		return ctdf.TransportTypeWalk
	case ctdf.SpeedRuleBicycle, ctdf.SpeedRuleElectricCycle:
		return ctdf.TransportTypeBicycle
	case ctdf.SpeedRuleCar, ctdf.SpeedRuleTruck:
		return ctdf.TransportTypeCar
	}
	return ctdf.TransportTypeUnknown
}
