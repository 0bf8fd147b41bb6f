// Package metrics holds the process-wide Prometheus collectors for native
// handle lifetimes and scan activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Handle kinds.
const (
	KindImage     = "image"
	KindScanner   = "scanner"
	KindProcessor = "processor"
)

// Scan sources and outcomes.
const (
	SourceScanner   = "scanner"
	SourceProcessor = "processor"

	StatusOK      = "ok"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

var (
	// Native handle lifecycle
	HandlesOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zbars_native_handles_open",
			Help: "Number of native zbar handles currently alive",
		},
		[]string{"kind"},
	)

	HandlesReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbars_native_handles_released_total",
			Help: "Total number of native zbar handles destroyed",
		},
		[]string{"kind"},
	)

	// Scan activity
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbars_scans_total",
			Help: "Total number of native scan calls",
		},
		[]string{"source", "status"},
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zbars_scan_duration_seconds",
			Help:    "Duration of native scan calls in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"source"},
	)

	SymbolsDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbars_symbols_decoded_total",
			Help: "Total number of decoded symbols",
		},
		[]string{"source"},
	)
)

// HandleOpened records the creation of a native handle.
func HandleOpened(kind string) {
	HandlesOpen.WithLabelValues(kind).Inc()
}

// HandleClosed records the destruction of a native handle.
func HandleClosed(kind string) {
	HandlesOpen.WithLabelValues(kind).Dec()
	HandlesReleased.WithLabelValues(kind).Inc()
}

// ObserveScan records one scan call and the number of symbols it produced.
func ObserveScan(source, status string, d time.Duration, symbols int) {
	ScansTotal.WithLabelValues(source, status).Inc()
	ScanDuration.WithLabelValues(source).Observe(d.Seconds())
	if symbols > 0 {
		SymbolsDecoded.WithLabelValues(source).Add(float64(symbols))
	}
}
