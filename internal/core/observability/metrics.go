// Package observability holds the Prometheus collectors of the service.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverage_operations_total",
			Help: "Coverage operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	operationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverage_operation_duration_seconds",
			Help:    "Duration of coverage operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
		[]string{"op"},
	)

	datasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Dataset load attempts by source kind and outcome.",
		},
		[]string{"source", "outcome"},
	)

	datasetLoadDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time spent fetching and decoding a dataset.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"source"},
	)

	datasetStations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dataset_base_stations",
		Help: "Base stations in the active dataset.",
	})

	datasetPoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dataset_coverage_points",
		Help: "Coverage point entries in the active dataset.",
	})

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveOperation(op, outcome string, durationSeconds float64) {
	operationsTotal.WithLabelValues(op, outcome).Inc()
	operationDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func ObserveDatasetLoad(source string, err error, durationSeconds float64) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	datasetLoadsTotal.WithLabelValues(source, outcome).Inc()
	datasetLoadDurationSeconds.WithLabelValues(source).Observe(durationSeconds)
}

func SetDatasetSize(stations, points int) {
	datasetStations.Set(float64(stations))
	datasetPoints.Set(float64(points))
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
