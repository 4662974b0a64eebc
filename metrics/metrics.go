// Package metrics exposes Prometheus counters for the article API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the middleware and handlers need from the collector.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordArticleOp(op, outcome string)
	RecordDenied(action string)
	RecordRateLimited()
}

type Collector struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	articleOps     *prometheus.CounterVec
	denied         *prometheus.CounterVec
	rateLimited    prometheus.Counter
}

// NewCollector registers all metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "article_api_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "article_api_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		articleOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "article_api_article_operations_total",
			Help: "Article operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "article_api_authorization_denied_total",
			Help: "Requests rejected by the authorization gate.",
		}, []string{"action"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "article_api_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.articleOps,
		c.denied,
		c.rateLimited,
	)

	return c
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordArticleOp counts one article operation; outcome is "ok" or an error kind.
func (c *Collector) RecordArticleOp(op, outcome string) {
	c.articleOps.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordDenied(action string) {
	c.denied.WithLabelValues(action).Inc()
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler serves the scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordArticleOp(string, string)                   {}
func (Nop) RecordDenied(string)                              {}
func (Nop) RecordRateLimited()                               {}
