package dataimporter

import (
	"strconv"
	"strings"
	"time"
)

type RoadNode struct {
	ID                   int64   `csv:"id"`
	X                    float64 `csv:"x"`
	Y                    float64 `csv:"y"`
	SharedVehicleStation bool    `csv:"shared_vehicle_station"`
}

type RoadEdge struct {
	ID            int64   `csv:"id"`
	SectionID     int64   `csv:"section_id"`
	Source        int64   `csv:"source"`
	Target        int64   `csv:"target"`
	Length        float64 `csv:"length"`
	TrafficRules  uint32  `csv:"traffic_rules"`
	CarSpeedLimit float64 `csv:"car_speed_limit"`
}

type Stop struct {
	ID        int64   `csv:"id"`
	Name      string  `csv:"name"`
	NetworkID int64   `csv:"network_id"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
}

type StopLink struct {
	StopID     int64   `csv:"stop_id"`
	RoadNodeID int64   `csv:"road_node_id"`
	Length     float64 `csv:"length"`
}

type TransitSection struct {
	FromStop int64 `csv:"from_stop"`
	ToStop   int64 `csv:"to_stop"`
}

// Restriction is a turn restriction over consecutive road edges. A blank or
// "inf" penalty forbids the movement.
type Restriction struct {
	ID           int64  `csv:"id"`
	RoadEdges    IDList `csv:"road_edges"`
	TrafficRules uint32 `csv:"traffic_rules"`
	Penalty      string `csv:"penalty"`
}

// StopTime is one hop of a trip between consecutive stops.
type StopTime struct {
	TripID        int64  `csv:"trip_id"`
	ServiceID     string `csv:"service_id"`
	Mode          int64  `csv:"transport_mode"`
	FromStop      int64  `csv:"from_stop"`
	ToStop        int64  `csv:"to_stop"`
	DepartureTime string `csv:"departure_time"`
	ArrivalTime   string `csv:"arrival_time"`
}

type Frequency struct {
	TripID         int64  `csv:"trip_id"`
	ServiceID      string `csv:"service_id"`
	Mode           int64  `csv:"transport_mode"`
	FromStop       int64  `csv:"from_stop"`
	ToStop         int64  `csv:"to_stop"`
	StartTime      string `csv:"start_time"`
	EndTime        string `csv:"end_time"`
	HeadwaySeconds int    `csv:"headway_secs"`
	TravelSeconds  int    `csv:"travel_secs"`
}

type SpeedProfile struct {
	SectionID    int64   `csv:"section_id"`
	SpeedRule    int     `csv:"speed_rule"`
	BeginTime    string  `csv:"begin_time"`
	EndTime      string  `csv:"end_time"`
	AverageSpeed float64 `csv:"average_speed"`
}

type Calendar struct {
	ServiceID string `csv:"service_id"`
	Monday    int    `csv:"monday"`
	Tuesday   int    `csv:"tuesday"`
	Wednesday int    `csv:"wednesday"`
	Thursday  int    `csv:"thursday"`
	Friday    int    `csv:"friday"`
	Saturday  int    `csv:"saturday"`
	Sunday    int    `csv:"sunday"`
	Start     string `csv:"start_date"`
	End       string `csv:"end_date"`
}

func (c *Calendar) RunsOn(day time.Weekday) bool {
	days := [7]int{c.Sunday, c.Monday, c.Tuesday, c.Wednesday, c.Thursday, c.Friday, c.Saturday}
	return days[day] == 1
}

const (
	ExceptionAdded   = 1
	ExceptionRemoved = 2
)

type CalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int    `csv:"exception_type"`
}

// IDList is a space separated list of ids in a single CSV field.
type IDList []int64

func (l *IDList) UnmarshalCSV(value string) error {
	*l = nil
	for _, field := range strings.Fields(value) {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return err
		}
		*l = append(*l, id)
	}
	return nil
}

func (l IDList) MarshalCSV() (string, error) {
	fields := make([]string, 0, len(l))
	for _, id := range l {
		fields = append(fields, strconv.FormatInt(id, 10))
	}
	return strings.Join(fields, " "), nil
}
