package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/metrics"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
	"github.com/travigo/journeyplanner/pkg/util"
	"golang.org/x/sync/singleflight"
)

// DataSource loads the network once and the temporal tables per service date.
type DataSource interface {
	LoadNetwork(ctx context.Context) (*network.Graph, []automaton.Restriction, error)
	LoadTables(ctx context.Context, date time.Time, model timetable.Model) (*timetable.Tables, error)
}

// Context is everything a search reads. It is never mutated once built and
// is shared by concurrent searches.
type Context struct {
	Graph            *network.Graph
	Automaton        *automaton.Automaton
	ReverseAutomaton *automaton.Automaton
	Tables           *timetable.Tables
}

// ContextProvider builds contexts and keeps the one of the last service date.
// Requests for another date or model trigger a reload; concurrent requests
// for the same reload share it.
type ContextProvider struct {
	source         DataSource
	forbiddenTurns bool
	collector      *metrics.Collector

	networkOnce sync.Once
	networkErr  error
	graph       *network.Graph
	forward     *automaton.Automaton
	reverse     *automaton.Automaton

	mutex      sync.RWMutex
	current    *Context
	currentKey string
	loads      singleflight.Group
}

func NewContextProvider(source DataSource, withForbiddenTurningMovements bool, collector *metrics.Collector) *ContextProvider {
	return &ContextProvider{
		source:         source,
		forbiddenTurns: withForbiddenTurningMovements,
		collector:      collector,
	}
}

func (p *ContextProvider) Get(ctx context.Context, date time.Time, model timetable.Model) (*Context, error) {
	date = util.ServiceDate(date)
	key := fmt.Sprintf("%s/%s", date.Format(time.DateOnly), model)

	p.mutex.RLock()
	current, currentKey := p.current, p.currentKey
	p.mutex.RUnlock()
	if current != nil && currentKey == key {
		return current, nil
	}

	loaded, err, _ := p.loads.Do(key, func() (interface{}, error) {
		return p.load(ctx, key, date, model)
	})
	if err != nil {
		return nil, err
	}

	return loaded.(*Context), nil
}

func (p *ContextProvider) load(ctx context.Context, key string, date time.Time, model timetable.Model) (*Context, error) {
	if err := p.loadNetwork(ctx); err != nil {
		return nil, err
	}

	started := time.Now()
	tables, err := p.source.LoadTables(ctx, date, model)
	if err != nil {
		return nil, fmt.Errorf("loading tables for %s: %w", date.Format(time.DateOnly), err)
	}

	stats := tables.Stats()
	log.Info().
		Str("date", date.Format(time.DateOnly)).
		Stringer("model", model).
		Int("departures", stats.Departures).
		Int("frequencies", stats.Frequencies).
		Int("speeds", stats.Speeds).
		Dur("length", time.Since(started)).
		Msg("Loaded temporal tables")
	p.collector.ObserveTableReload(time.Since(started))

	loaded := &Context{
		Graph:            p.graph,
		Automaton:        p.forward,
		ReverseAutomaton: p.reverse,
		Tables:           tables,
	}

	p.mutex.Lock()
	p.current, p.currentKey = loaded, key
	p.mutex.Unlock()

	return loaded, nil
}

func (p *ContextProvider) loadNetwork(ctx context.Context) error {
	p.networkOnce.Do(func() {
		graph, restrictions, err := p.source.LoadNetwork(ctx)
		if err != nil {
			p.networkErr = fmt.Errorf("loading network: %w", err)
			return
		}

		if !p.forbiddenTurns {
			restrictions = nil
		}

		forward, err := automaton.Build(graph, restrictions)
		if err != nil {
			p.networkErr = err
			return
		}
		reverse, err := automaton.BuildReverse(graph, restrictions)
		if err != nil {
			p.networkErr = err
			return
		}

		p.graph, p.forward, p.reverse = graph, forward, reverse

		log.Info().
			Int("road_nodes", graph.RoadNodeCount()).
			Int("stops", graph.StopCount()).
			Int("restrictions", len(restrictions)).
			Int("automaton_states", forward.StateCount()).
			Msg("Loaded network")
	})

	return p.networkErr
}
