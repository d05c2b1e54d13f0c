package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/travigo/journeyplanner/pkg/api/routes"
	"github.com/travigo/journeyplanner/pkg/metrics"
	"github.com/travigo/journeyplanner/pkg/planner"
)

func NewServer(p *planner.Planner, cache *routes.PlanCache, collector *metrics.Collector) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.PlannerRouter(group.Group("/planner"), p, cache)

	if collector != nil {
		webApp.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	return webApp
}

func SetupServer(listen string, p *planner.Planner, cache *routes.PlanCache, collector *metrics.Collector) error {
	return NewServer(p, cache, collector).Listen(listen)
}
