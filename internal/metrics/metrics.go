// Package metrics exposes Prometheus counters for the proxy and its calls
// to the Twitter API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the upstream client and the HTTP layer report to.
type Recorder interface {
	RecordUpstream(endpoint, outcome string, duration time.Duration)
	RecordRequest(method string, status int)
	RecordSessionIssued()
}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	sessionsIssued  prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twitterconnect_upstream_requests_total",
			Help: "Calls to the Twitter API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twitterconnect_upstream_latency_seconds",
			Help:    "Latency of calls to the Twitter API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twitterconnect_http_requests_total",
			Help: "Handled HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twitterconnect_sessions_issued_total",
			Help: "Session tokens issued after a completed handshake.",
		}),
	}

	reg.MustRegister(
		c.upstreamTotal,
		c.upstreamLatency,
		c.requestsTotal,
		c.sessionsIssued,
	)

	return c
}

func (c *Collector) RecordUpstream(endpoint, outcome string, duration time.Duration) {
	c.upstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	c.upstreamLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (c *Collector) RecordRequest(method string, status int) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordSessionIssued() {
	c.sessionsIssued.Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where no registry is wired, mostly tests.
type Nop struct{}

func (Nop) RecordUpstream(string, string, time.Duration) {}
func (Nop) RecordRequest(string, int)                    {}
func (Nop) RecordSessionIssued()                         {}
