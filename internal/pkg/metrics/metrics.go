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
		Namespace: "zonemap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zonemap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Zone metrics
	ZoneMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "zones",
		Name:      "mutations_total",
		Help:      "Committed zone mutations",
	}, []string{"op"})

	ZonesStored = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zonemap",
		Subsystem: "zones",
		Name:      "stored",
		Help:      "Zones in the current snapshot",
	})

	ContainmentQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "zones",
		Name:      "containment_queries_total",
		Help:      "Point-in-zone queries by outcome",
	}, []string{"result"})

	SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "session",
		Name:      "transitions_total",
		Help:      "Edit session transitions by target mode",
	}, []string{"mode"})

	// Persistence fan-out
	SyncDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "sync",
		Name:      "delivered_total",
		Help:      "Zone events handed to persistence sinks",
	}, []string{"sink", "op", "result"})

	SyncDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "sync",
		Name:      "dropped_total",
		Help:      "Zone events dropped because the sync queue was full",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zonemap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonemap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zonemap",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zonemap",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics copies pool gauges from a pgxpool.Stat without importing pgx.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
	}
	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
	}
}
