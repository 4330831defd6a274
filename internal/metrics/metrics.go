// Package metrics collects Prometheus metrics and serves them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/shareit/internal/model"
)

// Collector records HTTP traffic and booking lifecycle events. It satisfies
// service.BookingRecorder.
type Collector struct {
	httpStatus      *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	bookingsCreated prometheus.Counter
	bookingsDecided *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shareit_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shareit_http_request_duration_seconds",
			Help:    "HTTP request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareit_bookings_created_total",
			Help: "Bookings created.",
		}),
		bookingsDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shareit_bookings_decided_total",
			Help: "Owner decisions on bookings by resulting status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.bookingsCreated,
		c.bookingsDecided,
	)

	return c
}

// RecordHTTP records one finished request.
func (c *Collector) RecordHTTP(method string, statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) BookingCreated() {
	c.bookingsCreated.Inc()
}

func (c *Collector) BookingDecided(status model.BookingStatus) {
	c.bookingsDecided.WithLabelValues(string(status)).Inc()
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
