package dataimporter

import (
	"context"
	"fmt"
	"time"

	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/network"
	"github.com/travigo/journeyplanner/pkg/timetable"
)

// Source is where a network and its timetables come from.
type Source interface {
	LoadNetwork(ctx context.Context) (*network.Graph, []automaton.Restriction, error)
	LoadTables(ctx context.Context, date time.Time, model timetable.Model) (*timetable.Tables, error)
	Close() error
}

func NewSource(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case config.SourceTypeCSV:
		return NewCSVSource(cfg.Directory), nil
	case config.SourceTypePostgres:
		return NewPostgresSource(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}
