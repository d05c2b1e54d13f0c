package dataimporter

import (
	"math"
	"strconv"
	"strings"

	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/network"
)

// networkRecords are the static rows of a data source.
type networkRecords struct {
	Modes           []ctdf.TransportMode
	RoadNodes       []RoadNode
	RoadEdges       []RoadEdge
	Stops           []Stop
	StopLinks       []StopLink
	TransitSections []TransitSection
}

func (r *networkRecords) build() (*network.Graph, error) {
	builder := network.NewBuilder()

	for _, mode := range r.Modes {
		builder.AddTransportMode(mode)
	}
	for _, node := range r.RoadNodes {
		builder.AddRoadNode(network.RoadNode{
			ID:                   node.ID,
			Location:             ctdf.NewLocation(node.X, node.Y),
			SharedVehicleStation: node.SharedVehicleStation,
		})
	}
	for _, edge := range r.RoadEdges {
		builder.AddRoadEdge(network.RoadEdge{
			ID:            edge.ID,
			Section:       edge.SectionID,
			Source:        edge.Source,
			Target:        edge.Target,
			Length:        edge.Length,
			TrafficRules:  ctdf.TrafficRule(edge.TrafficRules),
			CarSpeedLimit: edge.CarSpeedLimit,
		})
	}
	for _, stop := range r.Stops {
		builder.AddStop(network.Stop{
			ID:        stop.ID,
			Name:      stop.Name,
			NetworkID: stop.NetworkID,
			Location:  ctdf.NewLocation(stop.X, stop.Y),
		})
	}
	for _, link := range r.StopLinks {
		builder.AddStopLink(link.StopID, link.RoadNodeID, link.Length)
	}
	for _, section := range r.TransitSections {
		builder.AddTransitSection(section.FromStop, section.ToStop)
	}

	return builder.Build()
}

// convertRestrictions turns restriction rows into automaton input. Rows
// without traffic rules apply to every mode.
func convertRestrictions(records []Restriction) ([]automaton.Restriction, error) {
	restrictions := make([]automaton.Restriction, 0, len(records))
	for _, record := range records {
		penalty, err := parsePenalty(record.Penalty)
		if err != nil {
			return nil, err
		}

		rules := ctdf.TrafficRule(record.TrafficRules)
		if rules == 0 {
			rules = ctdf.TrafficRuleAll
		}

		restrictions = append(restrictions, automaton.Restriction{
			ID:           record.ID,
			RoadEdges:    record.RoadEdges,
			TrafficRules: rules,
			Penalty:      penalty,
		})
	}
	return restrictions, nil
}

func parsePenalty(value string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "inf", "infinity":
		return math.Inf(1), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}
