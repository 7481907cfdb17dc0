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

// Result label values.
const (
	ResultOK        = "ok"
	ResultMalformed = "malformed"
	ResultRejected  = "rejected"
	ResultTransport = "transport"
	ResultDeclined  = "declined"
)

var (
	// HTTP server metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snippetmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snippetmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Widget metrics
	FeedLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snippetmap",
		Subsystem: "feed",
		Name:      "loads_total",
		Help:      "Feed loads by result",
	}, []string{"result"})

	FeedLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "snippetmap",
		Subsystem: "feed",
		Name:      "load_duration_seconds",
		Help:      "Time from feed request to rendered markers",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	})

	FeedFeatures = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snippetmap",
		Subsystem: "feed",
		Name:      "features",
		Help:      "Number of features in the last successful feed load",
	})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "snippetmap",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests to the snippets API",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	}, []string{"op"})

	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snippetmap",
		Subsystem: "marker",
		Name:      "mutations_total",
		Help:      "Marker mutations by operation and result",
	}, []string{"op", "result"})

	ValidationRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snippetmap",
		Subsystem: "marker",
		Name:      "validation_rejections_total",
		Help:      "Coordinate inputs rejected before any request was sent",
	})

	StaleCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snippetmap",
		Subsystem: "widget",
		Name:      "stale_completions_total",
		Help:      "Completions ignored because a newer request superseded them",
	}, []string{"op"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snippetmap",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Mutation events published to NATS",
	}, []string{"subject", "result"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

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
