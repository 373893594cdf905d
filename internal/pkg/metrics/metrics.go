package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openroute",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openroute",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Ranking backend
	RankingRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "openroute",
		Subsystem: "ranking",
		Name:      "request_duration_seconds",
		Help:      "Duration of suggestion requests to the ranking backend",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"outcome"})

	SuggestionsReceived = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "openroute",
		Subsystem: "ranking",
		Name:      "suggestions_per_response",
		Help:      "Number of suggestions in successful ranking responses",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
	})

	// Route layer
	RenderPasses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "map",
		Name:      "render_passes_total",
		Help:      "Total route layer render passes",
	})

	RoutesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "map",
		Name:      "routes_rendered_total",
		Help:      "Total route lines drawn",
	})

	RoutesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "map",
		Name:      "routes_skipped_total",
		Help:      "Total suggestions not drawn because their geometry had fewer than 2 usable points",
	})

	ViewportFitsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "map",
		Name:      "viewport_fits_skipped_total",
		Help:      "Render passes that left the camera unchanged because nothing was drawable",
	})

	// Selection
	SelectionIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "selection",
		Name:      "intents_total",
		Help:      "Select intents by surface and outcome (applied, unchanged, stale)",
	}, []string{"surface", "outcome"})

	// Sessions
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "openroute",
		Subsystem: "session",
		Name:      "active",
		Help:      "Current number of open compare sessions",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "openroute",
		Subsystem: "session",
		Name:      "expired_total",
		Help:      "Total compare sessions closed for inactivity",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "openroute",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path // route pattern keeps session ids out of the labels
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
