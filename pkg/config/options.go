package config

import (
	"github.com/jinzhu/copier"
)

// Options are the planner settings. Speeds are km/h, times are minutes.
type Options struct {
	Verbose     bool `yaml:"verbose" json:"verbose"`
	VerboseAlgo bool `yaml:"verbose_algo" json:"verbose_algo"`
	EnableTrace bool `yaml:"enable_trace" json:"enable_trace"`

	// TimetableFrequency selects the public transport model: 0 timetable, 1 frequency.
	TimetableFrequency            int  `yaml:"timetable_frequency" json:"timetable_frequency" validate:"oneof=0 1"`
	WithForbiddenTurningMovements bool `yaml:"with_forbidden_turning_movements" json:"with_forbidden_turning_movements"`

	MinTransferTime      float64 `yaml:"min_transfer_time" json:"min_transfer_time" validate:"gte=0"`
	WalkingSpeed         float64 `yaml:"walking_speed" json:"walking_speed" validate:"gt=0"`
	CyclingSpeed         float64 `yaml:"cycling_speed" json:"cycling_speed" validate:"gt=0"`
	CarParkingSearchTime float64 `yaml:"car_parking_search_time" json:"car_parking_search_time" validate:"gte=0"`
	UseSpeedProfiles     bool    `yaml:"use_speed_profiles" json:"use_speed_profiles"`

	Heuristic      bool    `yaml:"heuristic" json:"heuristic"`
	SpeedHeuristic float64 `yaml:"speed_heuristic" json:"speed_heuristic" validate:"gt=0"`

	// MultiDestinations is a comma separated list of road node ids.
	MultiDestinations string `yaml:"multi_destinations" json:"multi_destinations"`
}

func DefaultOptions() Options {
	return Options{
		Verbose:                       true,
		WithForbiddenTurningMovements: true,
		MinTransferTime:               2,
		WalkingSpeed:                  3.6,
		CyclingSpeed:                  12,
		CarParkingSearchTime:          5,
		SpeedHeuristic:                130,
	}
}

// Overrides carries per-request option changes, nil fields keep the defaults.
type Overrides struct {
	Verbose     *bool `yaml:"verbose" json:"verbose"`
	VerboseAlgo *bool `yaml:"verbose_algo" json:"verbose_algo"`
	EnableTrace *bool `yaml:"enable_trace" json:"enable_trace"`

	TimetableFrequency            *int  `yaml:"timetable_frequency" json:"timetable_frequency"`
	WithForbiddenTurningMovements *bool `yaml:"with_forbidden_turning_movements" json:"with_forbidden_turning_movements"`

	MinTransferTime      *float64 `yaml:"min_transfer_time" json:"min_transfer_time"`
	WalkingSpeed         *float64 `yaml:"walking_speed" json:"walking_speed"`
	CyclingSpeed         *float64 `yaml:"cycling_speed" json:"cycling_speed"`
	CarParkingSearchTime *float64 `yaml:"car_parking_search_time" json:"car_parking_search_time"`
	UseSpeedProfiles     *bool    `yaml:"use_speed_profiles" json:"use_speed_profiles"`

	Heuristic      *bool    `yaml:"heuristic" json:"heuristic"`
	SpeedHeuristic *float64 `yaml:"speed_heuristic" json:"speed_heuristic"`

	MultiDestinations *string `yaml:"multi_destinations" json:"multi_destinations"`
}

// Merge returns a validated copy of o with the overrides applied.
func (o Options) Merge(overrides *Overrides) (Options, error) {
	merged := o
	if overrides == nil {
		return merged, nil
	}

	if err := copier.CopyWithOption(&merged, overrides, copier.Option{IgnoreEmpty: true}); err != nil {
		return o, err
	}

	if err := validate.Struct(merged); err != nil {
		return o, err
	}

	return merged, nil
}
