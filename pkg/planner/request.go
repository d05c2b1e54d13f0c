package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/util"
)

var validate = validator.New()

type Criterion int

const (
	CriterionDistance Criterion = iota + 1
	CriterionDuration
	CriterionTransfers
	CriterionCarbon
	CriterionCalories
	CriterionPrice
)

func (c Criterion) String() string {
	switch c {
	case CriterionDistance:
		return "distance"
	case CriterionDuration:
		return "duration"
	case CriterionTransfers:
		return "transfers"
	case CriterionCarbon:
		return "carbon"
	case CriterionCalories:
		return "calories"
	case CriterionPrice:
		return "price"
	default:
		return fmt.Sprintf("criterion(%d)", int(c))
	}
}

type ConstraintType string

const (
	ConstraintAfter  ConstraintType = "after"
	ConstraintBefore ConstraintType = "before"
)

type TimeConstraint struct {
	Type     ConstraintType `json:"type" yaml:"type" validate:"oneof=after before"`
	DateTime time.Time      `json:"date_time" yaml:"date_time" validate:"required"`
}

type Step struct {
	Destination int64          `json:"destination" yaml:"destination"`
	Constraint  TimeConstraint `json:"constraint" yaml:"constraint"`

	PrivateVehicleAtDestination bool `json:"private_vehicle_at_destination" yaml:"private_vehicle_at_destination"`
}

// Request asks for a journey from Origin to the destination of the last step.
// The last step also carries the time constraint and the destination mode rule.
type Request struct {
	Origin int64  `json:"origin" yaml:"origin"`
	Steps  []Step `json:"steps" yaml:"steps" validate:"dive"`

	AllowedModes []int64     `json:"allowed_modes" yaml:"allowed_modes"`
	Criteria     []Criterion `json:"criteria" yaml:"criteria"`

	ParkingLocation *int64 `json:"parking_location,omitempty" yaml:"parking_location,omitempty"`

	Options *config.Overrides `json:"options,omitempty" yaml:"options,omitempty"`
}

func (r *Request) lastStep() Step {
	return r.Steps[len(r.Steps)-1]
}

func (r *Request) Destination() int64 {
	return r.lastStep().Destination
}

func (r *Request) Reversed() bool {
	return r.lastStep().Constraint.Type == ConstraintBefore
}

func (r *Request) DateTime() time.Time {
	return r.lastStep().Constraint.DateTime
}

// validateShape checks what can be checked without the network.
func (r *Request) validateShape(options config.Options) error {
	if len(r.Steps) == 0 {
		return invalidRequest(ErrNoStep, "at least one step is needed")
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	// Only duration is optimized
	criterion := CriterionDuration
	if len(r.Criteria) > 0 {
		criterion = r.Criteria[0]
	}
	if criterion != CriterionDuration {
		return invalidRequest(ErrUnsupportedCriterion, "Unsupported optimizing criterion %s", criterion)
	}

	if len(r.AllowedModes) == 0 {
		return invalidRequest(ErrNoAllowedMode, "no allowed mode")
	}

	if options.UseSpeedProfiles && r.Reversed() {
		return invalidRequest(ErrSpeedProfileConstraint, "arrive before requests cannot use speed profiles")
	}

	return nil
}

// resolve checks the request against the network and returns the allowed
// modes in request order.
func (r *Request) resolve(graph *network.Graph) ([]*ctdf.TransportMode, error) {
	for _, id := range []int64{r.Origin, r.Destination()} {
		if _, ok := graph.RoadNode(id); !ok {
			return nil, invalidRequest(ErrUnknownVertex, "road node %d is not in the network", id)
		}
	}
	if r.ParkingLocation != nil {
		if _, ok := graph.RoadNode(*r.ParkingLocation); !ok {
			return nil, invalidRequest(ErrUnknownVertex, "parking location %d is not in the network", *r.ParkingLocation)
		}
	}

	modes := make([]*ctdf.TransportMode, 0, len(r.AllowedModes))
	seen := map[int64]bool{}
	for _, id := range r.AllowedModes {
		mode, ok := graph.TransportMode(id)
		if !ok {
			return nil, invalidRequest(ErrNoAllowedMode, "unknown transport mode %d", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		modes = append(modes, mode)
	}

	return modes, nil
}

// ParseDestinations reads a comma separated list of road node ids.
func ParseDestinations(graph *network.Graph, list string) ([]int64, error) {
	var destinations []int64
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, invalidRequest(ErrBadDestinationList, "Cannot parse %s", item)
		}
		if _, ok := graph.RoadNode(id); !ok {
			return nil, invalidRequest(ErrBadDestinationList, "Cannot find vertex from %s", item)
		}
		destinations = append(destinations, id)
	}
	return destinations, nil
}

// startMinutes is the constrained time of day in minutes.
func (r *Request) startMinutes() float64 {
	return util.MinutesSinceMidnight(r.DateTime())
}

// NewRequest builds the usual single step request.
func NewRequest(origin int64, destination int64, dateTime time.Time, arriveBefore bool, allowedModes []int64) *Request {
	constraint := ConstraintAfter
	if arriveBefore {
		constraint = ConstraintBefore
	}

	return &Request{
		Origin: origin,
		Steps: []Step{{
			Destination: destination,
			Constraint: TimeConstraint{
				Type:     constraint,
				DateTime: dateTime,
			},
		}},
		AllowedModes: allowedModes,
		Criteria:     []Criterion{CriterionDuration},
	}
}

// ParseModes reads a comma separated list of transport mode ids.
func ParseModes(list string) ([]int64, error) {
	var modes []int64
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, invalidRequest(ErrNoAllowedMode, "Cannot parse mode %s", item)
		}
		modes = append(modes, id)
	}
	return modes, nil
}
