package session

import "github.com/prometheus/client_golang/prometheus"

var (
	importFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_import_files_total",
			Help: "Files seen at the import boundary",
		},
		[]string{"result"},
	)
	imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_imports_total",
			Help: "Completed imports",
		},
		[]string{"source"},
	)
	parseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "archive_parse_duration_seconds",
			Help:    "Time to parse one file name into a track",
			Buckets: prometheus.ExponentialBuckets(0.000005, 4, 8),
		},
	)
	libraryTracks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "archive_library_tracks",
			Help: "Tracks in the current import",
		},
	)
	mediaRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_media_requests_total",
			Help: "Stream and download requests",
		},
		[]string{"status"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(importFiles, imports, parseDuration, libraryTracks, mediaRequests)
}

// RecordMediaRequest counts one stream or download by outcome ("ok", "revoked", "error").
func RecordMediaRequest(status string) {
	mediaRequests.WithLabelValues(status).Inc()
}
