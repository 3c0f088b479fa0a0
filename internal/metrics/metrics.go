// Package metrics collects Prometheus metrics for the API client and exposes
// them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records gateway, normalizer and list controller observations.
// It satisfies actionsapi.GatewayMetrics, actionsapi.EnvelopeRecorder and
// application.StaleRecorder.
type Collector struct {
	requests      *prometheus.CounterVec
	latency       prometheus.Histogram
	invalidations prometheus.Counter
	envelopes     *prometheus.CounterVec
	staleDiscards prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actionpanel_api_requests_total",
			Help: "Calls made through the API gateway by method and status (0 for transport errors).",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actionpanel_api_request_duration_seconds",
			Help:    "Latency of calls made through the API gateway.",
			Buckets: prometheus.DefBuckets,
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actionpanel_session_invalidations_total",
			Help: "Sessions cleared after the server rejected the credential.",
		}),
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actionpanel_list_envelopes_total",
			Help: "List responses by the envelope shape they matched.",
		}, []string{"shape"}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actionpanel_list_stale_responses_total",
			Help: "List responses discarded because a newer fetch had been issued.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.invalidations,
		c.envelopes,
		c.staleDiscards,
	)

	return c
}

// ObserveRequest records one gateway call.
func (c *Collector) ObserveRequest(method string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.latency.Observe(d.Seconds())
}

// SessionInvalidated records a session cleared by a 401.
func (c *Collector) SessionInvalidated() {
	c.invalidations.Inc()
}

// ObserveEnvelope records the envelope shape a list response matched.
func (c *Collector) ObserveEnvelope(shape string) {
	c.envelopes.WithLabelValues(shape).Inc()
}

// StaleResponseDiscarded records a list response dropped as out of order.
func (c *Collector) StaleResponseDiscarded() {
	c.staleDiscards.Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
