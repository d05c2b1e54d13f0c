package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/metrics"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

type batchFile struct {
	Requests []Request `yaml:"requests"`
}

func RegisterCLI() *cli.Command {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to the planner YAML config",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "json",
			Usage: "Output format, json or pretty",
		},
		&cli.StringFlag{
			Name:  "metrics-listen",
			Usage: "Expose Prometheus metrics on this address while running",
		},
	}

	return &cli.Command{
		Name:  "planner",
		Usage: "Plan multimodal journeys on the command line",
		Subcommands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Plan a single journey",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:     "origin",
						Usage:    "Origin road node",
						Required: true,
					},
					&cli.Int64Flag{
						Name:     "destination",
						Usage:    "Destination road node",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:   "datetime",
						Usage:  "Departure (or arrival with --arrive-before) date time",
						Layout: time.RFC3339,
					},
					&cli.BoolFlag{
						Name:  "arrive-before",
						Usage: "Treat datetime as the latest arrival",
					},
					&cli.StringFlag{
						Name:  "modes",
						Value: "1",
						Usage: "Comma separated allowed transport mode ids",
					},
					&cli.Int64Flag{
						Name:  "parking",
						Usage: "Road node where a private vehicle must be parked",
					},
					&cli.BoolFlag{
						Name:  "pvad",
						Usage: "The private vehicle must be at the destination",
					},
					&cli.StringFlag{
						Name:  "destinations",
						Usage: "Comma separated road nodes that must all be reached",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Include the search trace",
					},
				}, commonFlags...),
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					modes, err := ParseModes(c.String("modes"))
					if err != nil {
						return err
					}

					dateTime := time.Now()
					if c.Timestamp("datetime") != nil {
						dateTime = *c.Timestamp("datetime")
					}

					request := NewRequest(c.Int64("origin"), c.Int64("destination"), dateTime, c.Bool("arrive-before"), modes)
					request.Steps[0].PrivateVehicleAtDestination = c.Bool("pvad")
					if c.IsSet("parking") {
						parking := c.Int64("parking")
						request.ParkingLocation = &parking
					}

					overrides := &config.Overrides{}
					if c.IsSet("trace") {
						trace := c.Bool("trace")
						overrides.EnableTrace = &trace
					}
					if c.IsSet("destinations") {
						destinations := c.String("destinations")
						overrides.MultiDestinations = &destinations
					}
					request.Options = overrides

					planner, closer, err := open(c.Context, cfg, c.String("metrics-listen"))
					if err != nil {
						return err
					}
					defer closer()

					result, err := planner.Plan(c.Context, request)
					if err != nil {
						return err
					}

					return output(c.String("format"), result)
				},
			},
			{
				Name:  "batch",
				Usage: "Plan every request of a YAML file concurrently",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "YAML file with a requests list",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 4,
						Usage: "Number of concurrent searches",
					},
				}, commonFlags...),
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					content, err := os.ReadFile(c.String("file"))
					if err != nil {
						return err
					}
					var batch batchFile
					if err := yaml.Unmarshal(content, &batch); err != nil {
						return fmt.Errorf("decoding %s: %w", c.String("file"), err)
					}

					planner, closer, err := open(c.Context, cfg, c.String("metrics-listen"))
					if err != nil {
						return err
					}
					defer closer()

					startTime := time.Now()
					results := planner.PlanBatch(c.Context, batch.Requests, c.Int("workers"))

					var failed int
					for _, result := range results {
						if result.Err != nil {
							failed++
							log.Error().Err(result.Err).Int("index", result.Index).Msg("Failed to plan request")
						}
					}
					log.Info().
						Int("requests", len(results)).
						Int("failed", failed).
						Msgf("Batch took %s", time.Since(startTime).String())

					return output(c.String("format"), results)
				},
			},
		},
	}
}

func open(ctx context.Context, cfg *config.Config, metricsListen string) (*Planner, func(), error) {
	var collector *metrics.Collector
	if metricsListen != "" {
		collector = metrics.NewCollector()
	}

	planner, source, err := Open(ctx, cfg, collector)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		if err := source.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close data source")
		}
	}

	if collector != nil {
		server := collector.Serve(metricsListen)
		closer = func() {
			server.Close()
			if err := source.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close data source")
			}
		}
	}

	return planner, closer, nil
}

func output(format string, value any) error {
	switch format {
	case "pretty":
		_, err := pretty.Println(value)
		return err
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
