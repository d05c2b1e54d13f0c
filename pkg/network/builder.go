package network

import (
	"errors"
	"fmt"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// Builder collects network records and validates them once in Build.
type Builder struct {
	nodes    map[int64]*RoadNode
	edges    []*RoadEdge
	stops    map[int64]*Stop
	links    []stopLink
	transits [][2]int64
	modes    []ctdf.TransportMode

	problems []error
}

type stopLink struct {
	stop   int64
	node   int64
	length float64
}

func NewBuilder() *Builder {
	return &Builder{
		nodes: map[int64]*RoadNode{},
		stops: map[int64]*Stop{},
	}
}

func (b *Builder) AddTransportMode(mode ctdf.TransportMode) {
	b.modes = append(b.modes, mode)
}

func (b *Builder) AddRoadNode(node RoadNode) {
	if _, exists := b.nodes[node.ID]; exists {
		b.problems = append(b.problems, fmt.Errorf("duplicate road node %d", node.ID))
		return
	}
	b.nodes[node.ID] = &node
}

func (b *Builder) AddRoadEdge(edge RoadEdge) {
	if edge.Length < 0 {
		b.problems = append(b.problems, fmt.Errorf("road edge %d has negative length", edge.ID))
		return
	}
	b.edges = append(b.edges, &edge)
}

func (b *Builder) AddStop(stop Stop) {
	if _, exists := b.stops[stop.ID]; exists {
		b.problems = append(b.problems, fmt.Errorf("duplicate stop %d", stop.ID))
		return
	}
	b.stops[stop.ID] = &stop
}

// AddStopLink connects a stop to a road node in both directions.
func (b *Builder) AddStopLink(stopID int64, nodeID int64, length float64) {
	if length < 0 {
		b.problems = append(b.problems, fmt.Errorf("stop link %d-%d has negative length", stopID, nodeID))
		return
	}
	b.links = append(b.links, stopLink{stop: stopID, node: nodeID, length: length})
}

func (b *Builder) AddTransitSection(fromStop int64, toStop int64) {
	b.transits = append(b.transits, [2]int64{fromStop, toStop})
}

func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		nodes:    b.nodes,
		edges:    make(map[int64]*RoadEdge, len(b.edges)),
		stops:    b.stops,
		outgoing: map[ctdf.Vertex][]*Edge{},
		incoming: map[ctdf.Vertex][]*Edge{},
		modes:    map[int64]*ctdf.TransportMode{},
	}
	problems := slices.Clone(b.problems)

	modes := b.modes
	if len(modes) == 0 {
		modes = ctdf.DefaultTransportModes()
	}
	for i := range modes {
		mode := modes[i]
		if _, exists := g.modes[mode.ID]; exists {
			problems = append(problems, fmt.Errorf("duplicate transport mode %d", mode.ID))
			continue
		}
		g.modes[mode.ID] = &mode
		g.modeOrder = append(g.modeOrder, mode.ID)
	}

	for _, roadEdge := range b.edges {
		if _, exists := g.edges[roadEdge.ID]; exists {
			problems = append(problems, fmt.Errorf("duplicate road edge %d", roadEdge.ID))
			continue
		}
		if _, ok := g.nodes[roadEdge.Source]; !ok {
			problems = append(problems, fmt.Errorf("road edge %d references unknown node %d", roadEdge.ID, roadEdge.Source))
			continue
		}
		if _, ok := g.nodes[roadEdge.Target]; !ok {
			problems = append(problems, fmt.Errorf("road edge %d references unknown node %d", roadEdge.ID, roadEdge.Target))
			continue
		}
		g.edges[roadEdge.ID] = roadEdge
		g.add(&Edge{
			Source: ctdf.RoadVertex(roadEdge.Source),
			Target: ctdf.RoadVertex(roadEdge.Target),
			Length: roadEdge.Length,
			Road:   roadEdge,
		})
	}

	for _, link := range b.links {
		if _, ok := g.stops[link.stop]; !ok {
			problems = append(problems, fmt.Errorf("stop link references unknown stop %d", link.stop))
			continue
		}
		if _, ok := g.nodes[link.node]; !ok {
			problems = append(problems, fmt.Errorf("stop link references unknown road node %d", link.node))
			continue
		}
		g.add(&Edge{Source: ctdf.RoadVertex(link.node), Target: ctdf.StopVertex(link.stop), Length: link.length})
		g.add(&Edge{Source: ctdf.StopVertex(link.stop), Target: ctdf.RoadVertex(link.node), Length: link.length})
	}

	seenTransit := map[[2]int64]bool{}
	for _, transit := range b.transits {
		if seenTransit[transit] {
			continue
		}
		seenTransit[transit] = true

		if _, ok := g.stops[transit[0]]; !ok {
			problems = append(problems, fmt.Errorf("transit section references unknown stop %d", transit[0]))
			continue
		}
		if _, ok := g.stops[transit[1]]; !ok {
			problems = append(problems, fmt.Errorf("transit section references unknown stop %d", transit[1]))
			continue
		}
		g.add(&Edge{Source: ctdf.StopVertex(transit[0]), Target: ctdf.StopVertex(transit[1])})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, errors.Join(problems...))
	}

	for _, edges := range g.outgoing {
		sortEdges(edges, func(e *Edge) ctdf.Vertex { return e.Target })
	}
	for _, edges := range g.incoming {
		sortEdges(edges, func(e *Edge) ctdf.Vertex { return e.Source })
	}

	return g, nil
}

func (g *Graph) add(e *Edge) {
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	g.incoming[e.Target] = append(g.incoming[e.Target], e)
}

// sortEdges gives adjacency lists a stable order so searches are reproducible.
func sortEdges(edges []*Edge, other func(*Edge) ctdf.Vertex) {
	slices.SortStableFunc(edges, func(a, b *Edge) int {
		if c := other(a).Compare(other(b)); c != 0 {
			return c
		}
		switch {
		case a.Length < b.Length:
			return -1
		case a.Length > b.Length:
			return 1
		}
		if a.Road != nil && b.Road != nil {
			switch {
			case a.Road.ID < b.Road.ID:
				return -1
			case a.Road.ID > b.Road.ID:
				return 1
			}
		}
		return 0
	})
}
