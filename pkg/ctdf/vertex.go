package ctdf

import (
	"fmt"
)

type VertexType uint8

const (
	VertexTypeRoad VertexType = iota + 1
	VertexTypePublicTransport
)

func (t VertexType) String() string {
	switch t {
	case VertexTypeRoad:
		return "Road"
	case VertexTypePublicTransport:
		return "PublicTransport"
	default:
		return "Unknown"
	}
}

func (t VertexType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *VertexType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Road":
		*t = VertexTypeRoad
	case "PublicTransport":
		*t = VertexTypePublicTransport
	default:
		return fmt.Errorf("unknown vertex type %q", text)
	}
	return nil
}

// Vertex is a position in the multimodal network: a road node or a public transport stop.
type Vertex struct {
	Type VertexType `json:"type" groups:"basic"`
	ID   int64      `json:"id" groups:"basic"`
}

func RoadVertex(id int64) Vertex {
	return Vertex{Type: VertexTypeRoad, ID: id}
}

func StopVertex(id int64) Vertex {
	return Vertex{Type: VertexTypePublicTransport, ID: id}
}

func (v Vertex) IsRoad() bool {
	return v.Type == VertexTypeRoad
}

func (v Vertex) IsPublicTransport() bool {
	return v.Type == VertexTypePublicTransport
}

func (v Vertex) String() string {
	if v.Type == VertexTypePublicTransport {
		return fmt.Sprintf("stop:%d", v.ID)
	}
	return fmt.Sprintf("road:%d", v.ID)
}

// Compare orders road vertices before stops, then by id.
func (v Vertex) Compare(other Vertex) int {
	if v.Type != other.Type {
		if v.Type < other.Type {
			return -1
		}
		return 1
	}
	switch {
	case v.ID < other.ID:
		return -1
	case v.ID > other.ID:
		return 1
	}
	return 0
}
