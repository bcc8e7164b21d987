// Package metrics exposes the storefront's Prometheus instrumentation.
//
//	e.Use(metrics.Middleware())
//	e.GET("/metrics", metrics.Handler())
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/storefront/internal/counts"
	"github.com/Skotchmaster/storefront/internal/guard"
)

const namespace = "storefront"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of storefront HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of storefront HTTP requests currently being served.",
	})

	// UpstreamRequests counts backend API calls by operation and status.
	// Transport failures are recorded with status "0".
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total backend API requests.",
		},
		[]string{"op", "status"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests in seconds.",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"op"},
	)

	GuardRedirects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "guard",
			Name:      "redirects_total",
			Help:      "Navigations sent to the login page.",
		},
		[]string{"access"},
	)

	CountSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "counts",
			Name:      "sync_total",
			Help:      "Cart and wishlist count synchronizations by outcome.",
		},
		[]string{"collection", "outcome"},
	)
)

var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestInFlight,
		UpstreamRequests,
		UpstreamDuration,
		GuardRedirects,
		CountSyncs,
	)
}

// Middleware labels requests by route template, so ids in paths do not
// blow up cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RequestDuration.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{EnableOpenMetrics: true})
	return echo.WrapHandler(h)
}

// ObserveUpstream matches apiclient.Observer.
func ObserveUpstream(op string, status int, elapsed time.Duration) {
	UpstreamRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	UpstreamDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordRedirect matches guard.Config.OnRedirect.
func RecordRedirect(d guard.Destination) {
	GuardRedirects.WithLabelValues(d.Access.String()).Inc()
}

// RecordCountSync matches counts.WithObserver.
func RecordCountSync(c counts.Collection, o counts.Outcome) {
	CountSyncs.WithLabelValues(string(c), string(o)).Inc()
}
