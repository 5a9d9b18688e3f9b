// Package metrics bundles the Prometheus collectors exposed on /metrics.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	GeocodeQueries       *prometheus.CounterVec
	GeocodeResolutions   *prometheus.CounterVec
	GeocodeQueryDuration *prometheus.HistogramVec
	GeocodeThrottleWait  prometheus.Histogram

	PhoneFallbacks *prometheus.CounterVec
}

// New registers the collectors against reg, defaulting to the global
// Prometheus registry when nil. Registering twice against the same
// registry reuses the existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	httpRequests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"method", "route"}), "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_queries_total",
		Help: "Outbound geocode queries, labeled by cascade level and outcome.",
	}, []string{"level", "outcome"}), "geocode_queries_total")
	if err != nil {
		return nil, err
	}

	resolutions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_resolutions_total",
		Help: "Address resolutions, labeled by the cascade level that succeeded or \"exhausted\".",
	}, []string{"level"}), "geocode_resolutions_total")
	if err != nil {
		return nil, err
	}

	queryDuration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocode_query_duration_seconds",
		Help:    "Provider round-trip time per query, excluding throttle wait.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 25},
	}, []string{"level"}), "geocode_query_duration_seconds")
	if err != nil {
		return nil, err
	}

	throttleWait, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geocode_throttle_wait_seconds",
		Help:    "Time spent waiting on the shared provider throttle before a query.",
		Buckets: []float64{0, 0.1, 0.5, 1, 1.1, 2, 5, 10, 30},
	}), "geocode_throttle_wait_seconds")
	if err != nil {
		return nil, err
	}

	phoneFallbacks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persona_phone_fallbacks_total",
		Help: "Phone numbers produced by the generic fallback generator, labeled by region.",
	}, []string{"region"}), "persona_phone_fallbacks_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:             gatherer,
		HTTPRequests:         httpRequests,
		HTTPDurations:        httpDurations,
		GeocodeQueries:       queries,
		GeocodeResolutions:   resolutions,
		GeocodeQueryDuration: queryDuration,
		GeocodeThrottleWait:  throttleWait,
		PhoneFallbacks:       phoneFallbacks,
	}, nil
}

// Handler exposes the registered metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		if c == nil {
			return
		}

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveGeocodeQuery records one provider query.
func (c *Collector) ObserveGeocodeQuery(level, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.GeocodeQueries.WithLabelValues(level, outcome).Inc()
	c.GeocodeQueryDuration.WithLabelValues(level).Observe(took.Seconds())
}

// ObserveResolution records which cascade level produced the address.
func (c *Collector) ObserveResolution(level string) {
	if c == nil {
		return
	}
	c.GeocodeResolutions.WithLabelValues(level).Inc()
}

// ObserveThrottleWait records time spent queued on the provider throttle.
func (c *Collector) ObserveThrottleWait(wait time.Duration) {
	if c == nil {
		return
	}
	c.GeocodeThrottleWait.Observe(wait.Seconds())
}

// ObservePhoneFallback records a phone number produced by the fallback path.
func (c *Collector) ObservePhoneFallback(region string) {
	if c == nil {
		return
	}
	c.PhoneFallbacks.WithLabelValues(region).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
