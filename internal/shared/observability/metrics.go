package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "a11yscan_scan_seconds",
		Help:    "Wall-clock time spent on one scan session run.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	PatternsFound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "a11yscan_patterns_found",
		Help: "Patterns found by the most recent scan.",
	})

	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "a11yscan_issues_total",
		Help: "Total issues reported, by severity.",
	}, []string{"severity"})

	ScansRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "a11yscan_scans_rejected_total",
		Help: "Total scan requests rejected because a scan was in flight.",
	})

	ScanFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "a11yscan_scan_failures_total",
		Help: "Total scans that ended in a recovered failure.",
	})

	DocumentParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "a11yscan_document_parse_seconds",
		Help:    "Time spent parsing a markup document into a node tree.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "a11yscan_watcher_events_total",
		Help: "Total file system events received by the watcher.",
	})
)
