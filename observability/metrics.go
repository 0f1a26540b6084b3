// Package observability wires logging, metrics and tracing for the catalog service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the service. Each Collector owns its own
// registry so tests can build as many as they like. A nil *Collector is valid and records
// nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Engine metrics
	Suggestions     prometheus.Counter
	SKULookups      *prometheus.CounterVec
	Views           *prometheus.CounterVec
	IndexedTerms    prometheus.Gauge
	IndexedSKUs     prometheus.Gauge
	RebuildDuration prometheus.Histogram

	// Event metrics
	EventsApplied *prometheus.CounterVec
}

// NewCollector creates a collector with every metric registered under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_total",
			Help:      "Total number of autocomplete queries",
		}),
		SKULookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sku_lookups_total",
				Help:      "SKU lookups by outcome (index, scan, miss)",
			},
			[]string{"result"},
		),
		Views: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "product_views_total",
				Help:      "Product point reads by outcome (found, missing)",
			},
			[]string{"result"},
		),
		IndexedTerms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prefix_index_terms",
			Help:      "Distinct values held by the autocomplete index",
		}),
		IndexedSKUs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sku_index_entries",
			Help:      "SKUs held by the SKU index",
		}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_rebuild_duration_seconds",
			Help:      "Full index rebuild duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		EventsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_events_total",
				Help:      "Catalog mutation events by kind and outcome",
			},
			[]string{"kind", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Suggestions,
		c.SKULookups,
		c.Views,
		c.IndexedTerms,
		c.IndexedSKUs,
		c.RebuildDuration,
		c.EventsApplied,
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSuggest counts an autocomplete query.
func (c *Collector) ObserveSuggest() {
	if c == nil {
		return
	}
	c.Suggestions.Inc()
}

// ObserveSKULookup counts a SKU lookup; result is "index", "scan" or "miss".
func (c *Collector) ObserveSKULookup(result string) {
	if c == nil {
		return
	}
	c.SKULookups.WithLabelValues(result).Inc()
}

// ObserveView counts a product point read.
func (c *Collector) ObserveView(found bool) {
	if c == nil {
		return
	}
	result := "missing"
	if found {
		result = "found"
	}
	c.Views.WithLabelValues(result).Inc()
}

// SetIndexSizes publishes the index sizes.
func (c *Collector) SetIndexSizes(terms, skus int) {
	if c == nil {
		return
	}
	c.IndexedTerms.Set(float64(terms))
	c.IndexedSKUs.Set(float64(skus))
}

// ObserveRebuild records a full rebuild.
func (c *Collector) ObserveRebuild(elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RebuildDuration.Observe(elapsed.Seconds())
}

// ObserveEvent counts a catalog event; status is "applied", "ignored" or "failed".
func (c *Collector) ObserveEvent(kind, status string) {
	if c == nil {
		return
	}
	c.EventsApplied.WithLabelValues(kind, status).Inc()
}
