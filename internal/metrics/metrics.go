// Package metrics exposes optimizer and HTTP measurements to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name when none is configured.
const DefaultNamespace = "crafting_optimizer"

// Collector handles all optimizer and API metrics. It satisfies
// engine.Recorder.
type Collector struct {
	registry *prometheus.Registry

	optimizationsTotal   *prometheus.CounterVec
	optimizationDuration prometheus.Histogram
	plannerRounds        prometheus.Histogram
	negativeInventory    prometheus.Counter
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Collector{
		registry: prometheus.NewRegistry(),

		// Optimization runs by outcome: success, invalid, error
		optimizationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimizations_total",
				Help:      "Total number of optimization runs by outcome",
			},
			[]string{"outcome"},
		),

		optimizationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "optimization_duration_seconds",
				Help:      "Optimization run duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),

		plannerRounds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "planner_rounds",
				Help:      "Number of greedy rounds applied per optimization",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),

		negativeInventory: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "negative_inventory_total",
				Help:      "Deductions that would have driven a stock count below zero",
			},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration distribution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Register registers all metrics plus the Go runtime and process collectors.
func (c *Collector) Register() error {
	metrics := []prometheus.Collector{
		c.optimizationsTotal,
		c.optimizationDuration,
		c.plannerRounds,
		c.negativeInventory,
		c.httpRequestsTotal,
		c.httpRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}

	for _, metric := range metrics {
		if err := c.registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveOptimization records a finished optimization run.
func (c *Collector) ObserveOptimization(outcome string, duration time.Duration, rounds int) {
	c.optimizationsTotal.WithLabelValues(outcome).Inc()
	c.optimizationDuration.Observe(duration.Seconds())
	if rounds > 0 {
		c.plannerRounds.Observe(float64(rounds))
	}
}

// NegativeInventory counts a clamped deduction.
func (c *Collector) NegativeInventory() {
	c.negativeInventory.Inc()
}

// RecordHTTPRequest records an HTTP request completion
func (c *Collector) RecordHTTPRequest(route string, statusCode int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
