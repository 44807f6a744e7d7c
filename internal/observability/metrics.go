package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream endpoint labels.
const (
	EndpointWeather  = "weather"
	EndpointForecast = "forecast"
	EndpointReverse  = "reverse"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream provider call rate by endpoint and outcome.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream provider latency. No retry, so one observation per client request.
	UpstreamDuration *prometheus.HistogramVec

	// Upstream failures by endpoint and category (see client.CategorizeError).
	UpstreamErrorsTotal *prometheus.CounterVec

	WeatherQueriesTotal  prometheus.Counter
	ForecastQueriesTotal prometheus.Counter

	// Gateway failures by operation and kind (invalid_request, misconfigured, not_found, upstream_error).
	GatewayErrorsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of weather provider calls",
		},
		[]string{"endpoint", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Weather provider latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Weather provider failures by category",
		},
		[]string{"endpoint", "category"},
	)
	WeatherQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Total number of current-weather lookups",
		},
	)
	ForecastQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastQueriesTotal",
			Help: "Total number of forecast lookups",
		},
	)
	GatewayErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewayErrorsTotal",
			Help: "Gateway failures returned to clients, by operation and kind",
		},
		[]string{"operation", "kind"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamErrorsTotal,
		WeatherQueriesTotal, ForecastQueriesTotal, GatewayErrorsTotal,
	)
}

// StatusLabel buckets an upstream HTTP status for the status label.
func StatusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
