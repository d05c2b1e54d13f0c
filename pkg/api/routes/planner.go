package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/planner"
)

type plannerRoutes struct {
	planner *planner.Planner
	cache   *PlanCache
}

func PlannerRouter(router fiber.Router, p *planner.Planner, cache *PlanCache) {
	routes := &plannerRoutes{planner: p, cache: cache}

	router.Get("/:origin/:destination", routes.getPlan)
	router.Post("/", routes.postPlan)
}

func (r *plannerRoutes) getPlan(c *fiber.Ctx) error {
	origin, err := strconv.ParseInt(c.Params("origin"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter origin should be a road node id",
		})
	}
	destination, err := strconv.ParseInt(c.Params("destination"), 10, 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter destination should be a road node id",
		})
	}

	// Get start time
	dateTime, err := parseDateTime(c.Query("datetime"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error":    "Parameter datetime should be an RFS3339/ISO8601 datetime",
			"detailed": err.Error(),
		})
	}

	modes, err := planner.ParseModes(c.Query("modes", "1"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	request := planner.NewRequest(origin, destination, dateTime, c.QueryBool("arrive_before"), modes)
	request.Steps[0].PrivateVehicleAtDestination = c.QueryBool("pvad")

	if parkingString := c.Query("parking"); parkingString != "" {
		parking, err := strconv.ParseInt(parkingString, 10, 64)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter parking should be a road node id",
			})
		}
		request.ParkingLocation = &parking
	}

	overrides := &config.Overrides{}
	if c.Query("trace") != "" {
		trace := c.QueryBool("trace")
		overrides.EnableTrace = &trace
	}
	if destinations := c.Query("destinations"); destinations != "" {
		overrides.MultiDestinations = &destinations
	}
	request.Options = overrides

	return r.plan(c, request)
}

func (r *plannerRoutes) postPlan(c *fiber.Ctx) error {
	var request planner.Request
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error":    "Request body should be a journey request",
			"detailed": err.Error(),
		})
	}

	return r.plan(c, &request)
}

func (r *plannerRoutes) plan(c *fiber.Ctx, request *planner.Request) error {
	result, cached := r.cache.Get(c.Context(), request)
	if !cached {
		var err error
		result, err = r.planner.Plan(c.Context(), request)
		if err != nil {
			c.SendStatus(planErrorStatus(err))
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		r.cache.Set(c.Context(), request, result)
	}

	groups := []string{"basic"}
	if len(result.Roadmap.Trace) > 0 {
		groups = append(groups, "detailed")
	}

	roadmapReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, result.Roadmap)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Roadmap",
		})
	}

	return c.JSON(fiber.Map{
		"roadmap": roadmapReduced,
		"metrics": result.Metrics,
		"cached":  cached,
	})
}

func planErrorStatus(err error) int {
	switch {
	case errors.Is(err, planner.ErrUnknownVertex):
		return fiber.StatusNotFound
	case errors.Is(err, planner.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, planner.ErrNoPathFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// parseDateTime defaults to the current minute so that repeated requests share
// a cache key.
func parseDateTime(value string) (time.Time, error) {
	if value == "" {
		return time.Now().Truncate(time.Minute), nil
	}
	return time.Parse(time.RFC3339, value)
}
