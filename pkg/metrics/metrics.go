package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	OutcomeFound   = "found"
	OutcomeNoPath  = "no_path"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Collector holds the planner metrics on its own registry. A nil Collector
// records nothing.
type Collector struct {
	reg *prometheus.Registry

	Plans *prometheus.CounterVec // outcome label: found|no_path|invalid|error

	Iterations         prometheus.Histogram
	SearchDuration     prometheus.Histogram
	PreprocessDuration prometheus.Histogram

	TableReloads        prometheus.Counter
	TableReloadDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeyplanner_plans_total",
			Help: "Planned requests by outcome.",
		}, []string{"outcome"}),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyplanner_search_iterations",
			Help:    "States finalized per search.",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyplanner_search_duration_seconds",
			Help:    "Duration of the search and roadmap construction.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		PreprocessDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyplanner_preprocess_duration_seconds",
			Help:    "Duration of request validation and context lookup.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 18),
		}),
		TableReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeyplanner_table_reloads_total",
			Help: "Temporal table loads triggered by a service date change.",
		}),
		TableReloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyplanner_table_reload_duration_seconds",
			Help:    "Duration of temporal table loads.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}

	reg.MustRegister(
		c.Plans,
		c.Iterations, c.SearchDuration, c.PreprocessDuration,
		c.TableReloads, c.TableReloadDuration,
	)

	return c
}

func (c *Collector) ObservePlan(outcome string, iterations int, preprocess time.Duration, search time.Duration) {
	if c == nil {
		return
	}
	c.Plans.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFound || outcome == OutcomeNoPath {
		c.Iterations.Observe(float64(iterations))
		c.SearchDuration.Observe(search.Seconds())
	}
	c.PreprocessDuration.Observe(preprocess.Seconds())
}

func (c *Collector) ObserveTableReload(length time.Duration) {
	if c == nil {
		return
	}
	c.TableReloads.Inc()
	c.TableReloadDuration.Observe(length.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	log.Info().Str("listen", addr).Msg("Serving metrics")
	return srv
}
