package planner

import (
	"context"

	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/dataimporter"
	"github.com/travigo/journeyplanner/pkg/metrics"
)

// Open connects the configured data source and returns a planner over it.
// The returned source must be closed by the caller.
func Open(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (*Planner, dataimporter.Source, error) {
	source, err := dataimporter.NewSource(ctx, cfg.Source)
	if err != nil {
		return nil, nil, err
	}

	provider := NewContextProvider(source, cfg.Options.WithForbiddenTurningMovements, collector)

	return New(provider, cfg.Options, collector), source, nil
}
