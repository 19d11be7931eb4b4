// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InquirySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_submissions_total",
			Help: "Total number of contact inquiry submissions by outcome",
		},
		[]string{"outcome"},
	)

	InquirySubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inquiry_submit_duration_seconds",
			Help:    "Duration of the outbound status request in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	InquirySubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inquiry_submissions_in_flight",
			Help: "Number of submissions currently waiting on the status endpoint",
		},
	)

	StatusRecordsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_records_created_total",
			Help: "Total number of status records stored",
		},
	)

	StatusRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_requests_failed_total",
			Help: "Total number of failed status endpoint requests",
		},
		[]string{"error_code"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "code"},
	)
)
