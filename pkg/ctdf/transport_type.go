package ctdf

type TransportType string

const (
	TransportTypeWalk     TransportType = "Walk"
	TransportTypeBicycle  TransportType = "Bicycle"
	TransportTypeCar      TransportType = "Car"
	TransportTypeBus      TransportType = "Bus"
	TransportTypeCoach    TransportType = "Coach"
	TransportTypeTram     TransportType = "Tram"
	TransportTypeTaxi     TransportType = "Taxi"
	TransportTypeTrain    TransportType = "Train"
	TransportTypeMetro    TransportType = "Metro"
	TransportTypeBoat     TransportType = "Boat"
	TransportTypeCableCar TransportType = "CableCar"
	TransportTypeUnknown  TransportType = "UNKNOWN"
)

// TrafficRule is a bitmask of the kinds of traffic a road section lets through.
type TrafficRule uint32

const (
	TrafficRulePedestrian TrafficRule = 1 << iota
	TrafficRuleBicycle
	TrafficRuleCar
	TrafficRuleTaxi
	TrafficRuleCarPool
	TrafficRuleTruck
	TrafficRuleCoach

	TrafficRuleAll TrafficRule = 1<<7 - 1
)

// Allows reports whether any of the rules in other is allowed by r.
func (r TrafficRule) Allows(other TrafficRule) bool {
	return r&other != 0
}

// SpeedRule selects which speed applies to a mode on the road network.
type SpeedRule int

const (
	SpeedRulePedestrian    SpeedRule = 1
	SpeedRuleBicycle       SpeedRule = 2
	SpeedRuleElectricCycle SpeedRule = 3
	SpeedRuleRoller        SpeedRule = 4
	SpeedRuleCar           SpeedRule = 5
	SpeedRuleTruck         SpeedRule = 6
)

type TransportMode struct {
	ID   int64         `json:"id" yaml:"id" csv:"id" validate:"required" groups:"basic"`
	Name string        `json:"name" yaml:"name" csv:"name" groups:"basic"`
	Type TransportType `json:"type" yaml:"type" csv:"type" groups:"basic"`

	PublicTransport bool `json:"public_transport" yaml:"public_transport" csv:"public_transport" groups:"detailed"`
	PrivateVehicle  bool `json:"private_vehicle" yaml:"private_vehicle" csv:"private_vehicle" groups:"detailed"`
	MustBeReturned  bool `json:"must_be_returned" yaml:"must_be_returned" csv:"must_be_returned" groups:"detailed"`

	TrafficRules TrafficRule `json:"traffic_rules" yaml:"traffic_rules" csv:"traffic_rules" groups:"detailed"`
	SpeedRule    SpeedRule   `json:"speed_rule" yaml:"speed_rule" csv:"speed_rule" groups:"detailed"`
}

// Individual is true for modes the traveller drives or walks themselves.
func (m *TransportMode) Individual() bool {
	return !m.PublicTransport
}

const (
	TransportModeWalking        int64 = 1
	TransportModePrivateBicycle int64 = 2
	TransportModePrivateCar     int64 = 3
	TransportModeTaxi           int64 = 4
)

// DefaultTransportModes is the mode catalogue used when the data source does not ship one.
func DefaultTransportModes() []TransportMode {
	return []TransportMode{
		{ID: TransportModeWalking, Name: "Walking", Type: TransportTypeWalk, TrafficRules: TrafficRulePedestrian, SpeedRule: SpeedRulePedestrian},
		{ID: TransportModePrivateBicycle, Name: "Private bicycle", Type: TransportTypeBicycle, PrivateVehicle: true, TrafficRules: TrafficRuleBicycle, SpeedRule: SpeedRuleBicycle},
		{ID: TransportModePrivateCar, Name: "Private car", Type: TransportTypeCar, PrivateVehicle: true, TrafficRules: TrafficRuleCar, SpeedRule: SpeedRuleCar},
		{ID: TransportModeTaxi, Name: "Taxi", Type: TransportTypeTaxi, TrafficRules: TrafficRuleTaxi | TrafficRuleCar, SpeedRule: SpeedRuleCar},
		{ID: 5, Name: "Bus", Type: TransportTypeBus, PublicTransport: true},
		{ID: 6, Name: "Tram", Type: TransportTypeTram, PublicTransport: true},
		{ID: 7, Name: "Metro", Type: TransportTypeMetro, PublicTransport: true},
		{ID: 8, Name: "Train", Type: TransportTypeTrain, PublicTransport: true},
		{ID: 9, Name: "Shared bicycle", Type: TransportTypeBicycle, MustBeReturned: true, TrafficRules: TrafficRuleBicycle, SpeedRule: SpeedRuleBicycle},
		{ID: 10, Name: "Shared car", Type: TransportTypeCar, MustBeReturned: true, TrafficRules: TrafficRuleCar, SpeedRule: SpeedRuleCar},
	}
}
