package network

import (
	"iter"

	"github.com/travigo/journeyplanner/pkg/ctdf"
)

// View is a directed reading of the graph. Neighbors yields edges in travel
// direction together with the vertex the search moves to.
type View interface {
	Neighbors(v ctdf.Vertex) iter.Seq2[*Edge, ctdf.Vertex]
	Reversed() bool
	Graph() *Graph
}

type forwardView struct {
	graph *Graph
}

func Forward(g *Graph) View {
	return forwardView{graph: g}
}

func (f forwardView) Neighbors(v ctdf.Vertex) iter.Seq2[*Edge, ctdf.Vertex] {
	return func(yield func(*Edge, ctdf.Vertex) bool) {
		for _, e := range f.graph.Outgoing(v) {
			if !yield(e, e.Target) {
				return
			}
		}
	}
}

func (f forwardView) Reversed() bool { return false }

func (f forwardView) Graph() *Graph { return f.graph }

type reverseView struct {
	graph *Graph
}

// Reverse walks edges against their direction, used for arrive-before searches.
func Reverse(g *Graph) View {
	return reverseView{graph: g}
}

func (r reverseView) Neighbors(v ctdf.Vertex) iter.Seq2[*Edge, ctdf.Vertex] {
	return func(yield func(*Edge, ctdf.Vertex) bool) {
		for _, e := range r.graph.Incoming(v) {
			if !yield(e, e.Source) {
				return
			}
		}
	}
}

func (r reverseView) Reversed() bool { return true }

func (r reverseView) Graph() *Graph { return r.graph }
