package network

import (
	"errors"

	"github.com/travigo/journeyplanner/pkg/ctdf"
)

var (
	ErrInvalidNetwork = errors.New("network: invalid network data")
)

// Graph is the immutable multimodal network. It is safe for concurrent readers.
type Graph struct {
	nodes    map[int64]*RoadNode
	edges    map[int64]*RoadEdge
	stops    map[int64]*Stop
	outgoing map[ctdf.Vertex][]*Edge
	incoming map[ctdf.Vertex][]*Edge

	modes     map[int64]*ctdf.TransportMode
	modeOrder []int64
}

func (g *Graph) RoadNode(id int64) (*RoadNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph) RoadEdge(id int64) (*RoadEdge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

func (g *Graph) Stop(id int64) (*Stop, bool) {
	s, ok := g.stops[id]
	return s, ok
}

func (g *Graph) HasVertex(v ctdf.Vertex) bool {
	switch v.Type {
	case ctdf.VertexTypeRoad:
		_, ok := g.nodes[v.ID]
		return ok
	case ctdf.VertexTypePublicTransport:
		_, ok := g.stops[v.ID]
		return ok
	}
	return false
}

func (g *Graph) Location(v ctdf.Vertex) ctdf.Location {
	switch v.Type {
	case ctdf.VertexTypeRoad:
		if n, ok := g.nodes[v.ID]; ok {
			return n.Location
		}
	case ctdf.VertexTypePublicTransport:
		if s, ok := g.stops[v.ID]; ok {
			return s.Location
		}
	}
	return ctdf.Location{}
}

func (g *Graph) TransportMode(id int64) (*ctdf.TransportMode, bool) {
	m, ok := g.modes[id]
	return m, ok
}

// TransportModes returns the catalogue in load order.
func (g *Graph) TransportModes() []*ctdf.TransportMode {
	modes := make([]*ctdf.TransportMode, 0, len(g.modeOrder))
	for _, id := range g.modeOrder {
		modes = append(modes, g.modes[id])
	}
	return modes
}

func (g *Graph) Outgoing(v ctdf.Vertex) []*Edge {
	return g.outgoing[v]
}

func (g *Graph) Incoming(v ctdf.Vertex) []*Edge {
	return g.incoming[v]
}

// EdgeBetween returns the first edge from u to v in adjacency order.
func (g *Graph) EdgeBetween(u, v ctdf.Vertex) (*Edge, bool) {
	for _, e := range g.outgoing[u] {
		if e.Target == v {
			return e, true
		}
	}
	return nil, false
}

func (g *Graph) RoadNodeCount() int {
	return len(g.nodes)
}

func (g *Graph) StopCount() int {
	return len(g.stops)
}
