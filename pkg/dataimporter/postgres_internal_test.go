package dataimporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/ctdf"
)

func TestOrientRestriction(t *testing.T) {
	// 1 -(10)-> 2 -(11)-> 3, section 12 runs 4 -> 3
	sections := map[int64]sectionEnds{
		10: {From: 1, To: 2},
		11: {From: 2, To: 3},
		12: {From: 4, To: 3},
	}

	edges, err := orientRestriction([]int64{10, 11}, sections)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, edges)

	edges, err = orientRestriction([]int64{11, 10}, sections)
	require.NoError(t, err)
	assert.Equal(t, []int64{-11, -10}, edges)

	edges, err = orientRestriction([]int64{10, 11, 12}, sections)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, -12}, edges)

	_, err = orientRestriction([]int64{10}, sections)
	assert.Error(t, err)

	_, err = orientRestriction([]int64{10, 12}, sections)
	assert.Error(t, err, "sections do not touch")

	_, err = orientRestriction([]int64{10, 99}, sections)
	assert.Error(t, err)
}

func TestRoadSectionEdges(t *testing.T) {
	both := roadSection{ID: 5, From: 1, To: 2, Length: 100, RulesFT: 7, RulesTF: 1, SpeedLimit: 50}
	edges := both.edges()
	require.Len(t, edges, 2)
	assert.Equal(t, RoadEdge{ID: 5, SectionID: 5, Source: 1, Target: 2, Length: 100, TrafficRules: 7, CarSpeedLimit: 50}, edges[0])
	assert.Equal(t, RoadEdge{ID: -5, SectionID: 5, Source: 2, Target: 1, Length: 100, TrafficRules: 1, CarSpeedLimit: 50}, edges[1])

	oneWay := roadSection{ID: 6, From: 1, To: 2, Length: 100, RulesFT: 4}
	assert.Len(t, oneWay.edges(), 1)
}

func TestModeType(t *testing.T) {
	assert.Equal(t, ctdf.TransportTypeBus, modeType(3, 0))
	assert.Equal(t, ctdf.TransportTypeTrain, modeType(2, 0))
	assert.Equal(t, ctdf.TransportTypeWalk, modeType(-1, ctdf.SpeedRulePedestrian))
	assert.Equal(t, ctdf.TransportTypeCar, modeType(-1, ctdf.SpeedRuleCar))
	assert.Equal(t, ctdf.TransportTypeUnknown, modeType(-1, 0))
}

func TestConvertRestrictions(t *testing.T) {
	restrictions, err := convertRestrictions([]Restriction{
		{ID: 1, RoadEdges: IDList{10, 11}, Penalty: ""},
		{ID: 2, RoadEdges: IDList{11, 12}, TrafficRules: uint32(ctdf.TrafficRuleCar), Penalty: "2.5"},
	})
	require.NoError(t, err)
	require.Len(t, restrictions, 2)

	assert.True(t, math.IsInf(restrictions[0].Penalty, 1))
	assert.Equal(t, ctdf.TrafficRuleAll, restrictions[0].TrafficRules)
	assert.Equal(t, []int64{10, 11}, restrictions[0].RoadEdges)

	assert.Equal(t, 2.5, restrictions[1].Penalty)
	assert.Equal(t, ctdf.TrafficRuleCar, restrictions[1].TrafficRules)

	_, err = convertRestrictions([]Restriction{{ID: 3, Penalty: "lots"}})
	assert.Error(t, err)
}

func TestParsePenalty(t *testing.T) {
	for _, value := range []string{"", "inf", " Infinity "} {
		penalty, err := parsePenalty(value)
		require.NoError(t, err)
		assert.True(t, math.IsInf(penalty, 1), value)
	}

	penalty, err := parsePenalty("3")
	require.NoError(t, err)
	assert.Equal(t, 3.0, penalty)
}
