// Package metrics exposes the Prometheus instrumentation of porkchop scans.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cell outcomes.
const (
	OutcomeFeasible   = "feasible"
	OutcomeInfeasible = "infeasible"
)

// Scan statuses.
const (
	StatusOK         = "ok"
	StatusInfeasible = "infeasible"
	StatusError      = "error"
)

var (
	cellsEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcp_cells_evaluated_total",
			Help: "Total number of grid cells evaluated.",
		},
		[]string{"outcome"},
	)

	scanDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pcp_scan_duration_seconds",
			Help:    "Porkchop scan duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)

	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcp_scans_total",
			Help: "Total number of porkchop scans.",
		},
		[]string{"policy", "status"},
	)
)

func init() {
	prometheus.MustRegister(cellsEvaluatedTotal)
	prometheus.MustRegister(scanDurationSeconds)
	prometheus.MustRegister(scansTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CellEvaluated counts one evaluated cell.
func CellEvaluated(outcome string) {
	cellsEvaluatedTotal.WithLabelValues(outcome).Inc()
}

// ObserveScan records a finished scan with its status.
func ObserveScan(policy, status string, d time.Duration) {
	scansTotal.WithLabelValues(policy, status).Inc()
	scanDurationSeconds.Observe(d.Seconds())
}
