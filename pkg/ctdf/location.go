package ctdf

import "math"

// Location is a projected point, coordinates are metres.
type Location struct {
	Type        string    `json:"-" groups:"basic"`
	Coordinates []float64 `json:"coordinates" groups:"basic"`
}

func NewLocation(x, y float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{x, y},
	}
}

// Distance is the euclidean distance in metres, or 0 when either location is unset.
func (l Location) Distance(other Location) float64 {
	if len(l.Coordinates) < 2 || len(other.Coordinates) < 2 {
		return 0
	}

	dx := l.Coordinates[0] - other.Coordinates[0]
	dy := l.Coordinates[1] - other.Coordinates[1]
	return math.Sqrt(dx*dx + dy*dy)
}
