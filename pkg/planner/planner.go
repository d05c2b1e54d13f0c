package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/cost"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/metrics"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
	"github.com/travigo/journeyplanner/pkg/util"
)

type Metrics struct {
	Iterations     int           `json:"iterations" yaml:"iterations"`
	PreprocessTime time.Duration `json:"preprocess_time" yaml:"preprocess_time"`
	SearchTime     time.Duration `json:"search_time" yaml:"search_time"`
}

type Result struct {
	Roadmap *ctdf.Roadmap `json:"roadmap" yaml:"roadmap"`
	Metrics Metrics       `json:"metrics" yaml:"metrics"`
}

// Planner answers requests against the contexts of a provider. It keeps no
// per-request state and can be used concurrently.
type Planner struct {
	provider  *ContextProvider
	options   config.Options
	collector *metrics.Collector
}

func New(provider *ContextProvider, options config.Options, collector *metrics.Collector) *Planner {
	return &Planner{
		provider:  provider,
		options:   options,
		collector: collector,
	}
}

func (p *Planner) Plan(ctx context.Context, request *Request) (*Result, error) {
	started := time.Now()

	result, searchTime, err := p.plan(ctx, request, started)

	outcome := metrics.OutcomeFound
	switch {
	case errors.Is(err, ErrInvalidRequest):
		outcome = metrics.OutcomeInvalid
	case errors.Is(err, ErrNoPathFound):
		outcome = metrics.OutcomeNoPath
	case err != nil:
		outcome = metrics.OutcomeError
	}
	var iterations int
	preprocess := time.Since(started) - searchTime
	if result != nil {
		iterations = result.Metrics.Iterations
		preprocess = result.Metrics.PreprocessTime
	}
	p.collector.ObservePlan(outcome, iterations, preprocess, searchTime)

	return result, err
}

func (p *Planner) plan(ctx context.Context, request *Request, started time.Time) (*Result, time.Duration, error) {
	// 1. Options and request shape
	options, err := p.options.Merge(request.Options)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := request.validateShape(options); err != nil {
		return nil, 0, err
	}

	reversed := request.Reversed()
	model := timetable.Model(options.TimetableFrequency)

	// 2. Context of the service date
	pctx, err := p.provider.Get(ctx, request.DateTime(), model)
	if err != nil {
		return nil, 0, err
	}
	graph := pctx.Graph

	modes, err := request.resolve(graph)
	if err != nil {
		return nil, 0, err
	}

	destinations := []int64{request.Destination()}
	if reversed {
		destinations = []int64{request.Origin}
	}
	if options.MultiDestinations != "" {
		destinations, err = ParseDestinations(graph, options.MultiDestinations)
		if err != nil {
			return nil, 0, err
		}
	}

	pvad := request.lastStep().PrivateVehicleAtDestination
	// Not simply the first allowed mode: public transport and shared modes
	// cannot leave the root on their own.
	rootMode, err := selectRootMode(modes, reversed, pvad)
	if err != nil {
		return nil, 0, err
	}

	logger := log.Logger.With().
		Int64("origin", request.Origin).
		Int64("destination", request.Destination()).
		Bool("reversed", reversed).
		Logger()
	if options.Verbose {
		logger.Info().Time("datetime", request.DateTime()).Msg("Planning journey")
	}

	algoLogger := zerolog.Nop()
	if options.VerboseAlgo {
		algoLogger = logger.Level(zerolog.DebugLevel)
	}

	// 3. Search
	view := network.Forward(graph)
	fsa := pctx.Automaton
	root := State{Position: ctdf.RoadVertex(request.Origin), Mode: rootMode.ID}
	rootPotential := request.startMinutes()
	if reversed {
		view = network.Reverse(graph)
		fsa = pctx.ReverseAutomaton
		root.Position = ctdf.RoadVertex(request.Destination())
		rootPotential = -rootPotential
	}

	targets := make([]ctdf.Vertex, 0, len(destinations))
	for _, d := range destinations {
		targets = append(targets, ctdf.RoadVertex(d))
	}
	var heuristic Heuristic = NullHeuristic{}
	if options.Heuristic {
		heuristic = NewEuclideanHeuristic(graph, targets, options.SpeedHeuristic)
	}

	calculator := cost.NewCalculator(graph, pctx.Tables, request.AllowedModes, cost.Options{
		Model:             model,
		MinTransferTime:   options.MinTransferTime,
		WalkingSpeed:      options.WalkingSpeed,
		CyclingSpeed:      options.CyclingSpeed,
		ParkingSearchTime: options.CarParkingSearchTime,
		UseSpeedProfiles:  options.UseSpeedProfiles,
		Origin:            request.Origin,
		ParkingLocation:   request.ParkingLocation,
		Reversed:          reversed,
	})

	search := &Search{
		View:      view,
		Automaton: fsa,
		Cost:      calculator,
		Modes:     modes,
		Visitor:   NewDestinationVisitor(graph, destinations, pvad, reversed, algoLogger),
		Heuristic: heuristic,
		Labels:    NewLabels(),
		Logger:    algoLogger,
	}

	searchStarted := time.Now()
	preprocess := searchStarted.Sub(started)

	found, err := search.Run(root, rootPotential)
	if err != nil {
		if options.Verbose {
			logger.Info().Int("iterations", search.Iterations).Msg("No path found")
		}
		return nil, time.Since(searchStarted), err
	}
	if options.Verbose {
		logger.Info().Stringer("state", found).Int("iterations", search.Iterations).Msg("Found destination")
	}

	// 4. Path and roadmap
	path, err := BuildPath(search.Labels, root, found, reversed)
	if err != nil {
		return nil, time.Since(searchStarted), err
	}

	roadmap, err := BuildRoadmap(graph, search.Labels, path, RoadmapOptions{
		Reversed:  reversed,
		Model:     model,
		Date:      util.ServiceDate(request.DateTime()),
		Departure: request.DateTime(),
		Trace:     options.EnableTrace,
	})
	if err != nil {
		return nil, time.Since(searchStarted), err
	}
	searchTime := time.Since(searchStarted)

	if options.Verbose {
		logger.Info().
			Time("start", roadmap.StartingDateTime).
			Float64("duration", roadmap.TotalDuration()).
			Int("steps", len(roadmap.Steps)).
			Msg("Built roadmap")
	}

	return &Result{
		Roadmap: roadmap,
		Metrics: Metrics{
			Iterations:     search.Iterations,
			PreprocessTime: preprocess,
			SearchTime:     searchTime,
		},
	}, searchTime, nil
}

// selectRootMode takes the first allowed individual mode. A reversed search
// starts at the destination, so the mode must also be one the journey can
// end with.
func selectRootMode(modes []*ctdf.TransportMode, reversed bool, privateVehicleAtDestination bool) (*ctdf.TransportMode, error) {
	for _, mode := range modes {
		if mode.PublicTransport || mode.MustBeReturned {
			continue
		}
		if reversed && mode.PrivateVehicle && !privateVehicleAtDestination {
			continue
		}
		return mode, nil
	}
	return nil, invalidRequest(ErrNoAllowedMode, "no allowed mode can start the journey")
}
