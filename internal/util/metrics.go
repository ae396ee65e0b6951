package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_runs_total",
		Help: "Total number of ETL runs by outcome",
	}, []string{"status"})

	RowsLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_rows_loaded_total",
		Help: "Total number of rows written per target table",
	}, []string{"table"})

	ReferentialViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_referential_violations_total",
		Help: "Total number of unresolved natural-key references detected",
	}, []string{"stage", "reference"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etl_stage_duration_seconds",
		Help:    "Duration of each load stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
