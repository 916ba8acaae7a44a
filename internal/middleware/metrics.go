package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PageCacheHits counts home-page cache hits by key.
	PageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_page_cache_hits_total",
		Help: "Total number of page cache hits",
	}, []string{"key"})

	// PageCacheMisses counts home-page cache misses by key.
	PageCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_page_cache_misses_total",
		Help: "Total number of page cache misses",
	}, []string{"key"})
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for HTTP-level metrics.
// The underlying collectors register against the default registry, so the
// instance is created once and shared.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
