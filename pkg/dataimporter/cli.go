package dataimporter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/automaton"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/timetable"
	"github.com/travigo/journeyplanner/pkg/util"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Load and check network and timetable data sources",
		Subcommands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Load a data source and report what it contains",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the planner YAML config",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Service date to load timetables for (YYYY-MM-DD), defaults to today",
					},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "Timezone of the service date",
						Value: "Europe/London",
					},
					&cli.StringFlag{
						Name:     "repeat-every",
						Usage:    "Repeat this check every X seconds",
						Required: false,
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					location, err := time.LoadLocation(c.String("timezone"))
					if err != nil {
						return err
					}
					date := time.Now().In(location)
					if c.String("date") != "" {
						date, err = time.ParseInLocation(time.DateOnly, c.String("date"), location)
						if err != nil {
							return err
						}
					}

					repeatEvery := c.String("repeat-every")
					repeat := repeatEvery != ""
					var repeatDuration time.Duration
					if repeat {
						var err error
						repeatDuration, err = time.ParseDuration(repeatEvery)

						if err != nil {
							return err
						}
					}

					for {
						startTime := time.Now()

						err := Check(c.Context, cfg, util.ServiceDate(date))

						if err != nil {
							return err
						}
						if !repeat {
							break
						}

						executionDuration := time.Since(startTime)
						log.Info().Msgf("Operation took %s", executionDuration.String())

						waitTime := repeatDuration - executionDuration

						if waitTime.Seconds() > 0 {
							time.Sleep(waitTime)
						}
					}

					return nil
				},
			},
		},
	}
}

// Check loads everything the planner would need for date and logs a summary.
func Check(ctx context.Context, cfg *config.Config, date time.Time) error {
	source, err := NewSource(ctx, cfg.Source)
	if err != nil {
		return err
	}
	defer source.Close()

	graph, restrictions, err := source.LoadNetwork(ctx)
	if err != nil {
		return fmt.Errorf("loading network: %w", err)
	}

	states := 1
	if cfg.Options.WithForbiddenTurningMovements {
		turns, err := automaton.Build(graph, restrictions)
		if err != nil {
			return fmt.Errorf("building automaton: %w", err)
		}
		states = turns.StateCount()
	}

	log.Info().
		Str("source", cfg.Source.Type).
		Int("roadnodes", graph.RoadNodeCount()).
		Int("stops", graph.StopCount()).
		Int("modes", len(graph.TransportModes())).
		Int("restrictions", len(restrictions)).
		Int("automatonstates", states).
		Msg("Loaded network")

	model := timetable.Model(cfg.Options.TimetableFrequency)
	tables, err := source.LoadTables(ctx, date, model)
	if err != nil {
		return fmt.Errorf("loading %s tables: %w", model, err)
	}

	stats := tables.Stats()
	log.Info().
		Str("date", date.Format(time.DateOnly)).
		Str("model", model.String()).
		Int("departures", stats.Departures).
		Int("frequencies", stats.Frequencies).
		Int("speeds", stats.Speeds).
		Msg("Loaded tables")

	return nil
}
