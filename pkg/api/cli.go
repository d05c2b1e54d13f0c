package api

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/api/routes"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/metrics"
	"github.com/travigo/journeyplanner/pkg/planner"
	"github.com/travigo/journeyplanner/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the journey planner web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the planner YAML config",
					},
					&cli.DurationFlag{
						Name:  "cache-expiration",
						Value: 15 * time.Minute,
						Usage: "How long planned journeys are cached in Redis",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					if err := redis_client.Connect(false); err != nil {
						return err
					}
					cache := routes.NewPlanCache(redis_client.Client, c.Duration("cache-expiration"))

					collector := metrics.NewCollector()

					p, source, err := planner.Open(c.Context, cfg, collector)
					if err != nil {
						return err
					}
					defer source.Close()

					log.Info().Str("listen", c.String("listen")).Msg("Starting web API")

					return SetupServer(c.String("listen"), p, cache, collector)
				},
			},
		},
	}
}
