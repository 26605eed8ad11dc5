package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, route and status code.",
		},
		[]string{"service", "route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by service and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Published domain events by type.",
		},
		[]string{"type"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limiter.",
		},
		[]string{"service"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, domainEvents, rateLimited)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(service, route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(service, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(service, route).Observe(elapsed.Seconds())
}

func IncEvent(eventType string) {
	domainEvents.WithLabelValues(eventType).Inc()
}

func IncRateLimited(service string) {
	rateLimited.WithLabelValues(service).Inc()
}
