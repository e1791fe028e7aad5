package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes
const (
	OutcomeOK         = "ok"
	OutcomeRejected   = "rejected"
	OutcomeUnreadable = "unreadable"
	OutcomeNoTables   = "no_tables"
	OutcomeStoreError = "store_error"
)

var (
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodwork_uploads_total",
			Help: "Total number of lab report uploads by outcome",
		},
		[]string{"outcome"},
	)

	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodwork_rows_total",
			Help: "Total number of table rows examined by parse outcome",
		},
		[]string{"outcome"},
	)

	resultsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bloodwork_results_stored_total",
			Help: "Total number of test results written to the store",
		},
	)

	storageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloodwork_storage_errors_total",
			Help: "Total number of failed storage operations",
		},
		[]string{"op"},
	)

	ingestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bloodwork_ingest_duration_seconds",
			Help:    "Time spent turning one report into stored results",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpload records one finished upload
func RecordUpload(outcome string, duration time.Duration) {
	uploadsTotal.WithLabelValues(outcome).Inc()
	ingestDuration.Observe(duration.Seconds())
}

// RecordRow records the parse outcome of one table row. An empty reason
// means the row was accepted.
func RecordRow(reason string) {
	if reason == "" {
		reason = "accepted"
	}
	rowsTotal.WithLabelValues(reason).Inc()
}

// RecordStored records results written in one batch
func RecordStored(n int) {
	resultsStored.Add(float64(n))
}

// RecordStorageError records a failed storage operation
func RecordStorageError(op string) {
	storageErrors.WithLabelValues(op).Inc()
}
