// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakuwaki_upstream_requests_total",
			Help: "Total requests made to upstream APIs",
		},
		[]string{"source", "status"},
	)
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bakuwaki_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests, retries included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)
	predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakuwaki_predictions_total",
			Help: "Total weekly predictions computed",
		},
		[]string{"status"},
	)
	predictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bakuwaki_prediction_duration_seconds",
			Help:    "Duration of weekly prediction computations",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	moonAgeFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bakuwaki_moon_age_fallbacks_total",
			Help: "Total days predicted with the default moon age",
		},
	)
	forecastCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakuwaki_forecast_cache_total",
			Help: "Forecast requests served from or missed by the stored forecast",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		fetches,
		fetchDuration,
		predictions,
		predictionDuration,
		moonAgeFallbacks,
		forecastCache,
	)
}

// ObserveFetch records an upstream request.
func ObserveFetch(source string, err error, d time.Duration) {
	fetches.WithLabelValues(source, status(err)).Inc()
	fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObservePrediction records a weekly prediction computation.
func ObservePrediction(err error, d time.Duration) {
	predictions.WithLabelValues(status(err)).Inc()
	predictionDuration.Observe(d.Seconds())
}

// IncMoonAgeFallback increments the number of days predicted with the default moon age.
func IncMoonAgeFallback() {
	moonAgeFallbacks.Inc()
}

// IncForecastCache records whether a stored forecast has been served.
func IncForecastCache(hit bool) {
	if hit {
		forecastCache.WithLabelValues("hit").Inc()
		return
	}
	forecastCache.WithLabelValues("miss").Inc()
}

// Handler returns an HTTP handler that exposes Prometheus metrics.
func Handler() http.Handler { return promhttp.Handler() }

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
