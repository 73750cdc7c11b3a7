package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_ingest_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600, 1800},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_ingest_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_uploads_total",
			Help: "Total number of uploads by outcome",
		},
		[]string{"status"}, // "success", "invalid", "probe_error", "error"
	)

	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_ingest_upload_bytes_total",
			Help: "Total number of original bytes persisted",
		},
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_ingest_upload_duration_seconds",
			Help:    "Duration of the full ingestion pipeline in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	IDCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_ingest_id_collisions_total",
			Help: "Number of asset id collisions resolved with a unique suffix",
		},
	)
)

// Prober metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_probes_total",
			Help: "Total number of ffprobe invocations",
		},
		[]string{"status"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_ingest_probe_duration_seconds",
			Help:    "ffprobe duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Transcoder metrics
var (
	TranscoderJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_transcoder_jobs_total",
			Help: "Total number of tier transcoding jobs",
		},
		[]string{"tier", "status"},
	)

	TranscoderJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_ingest_transcoder_job_duration_seconds",
			Help:    "Tier transcoding job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"tier"},
	)

	TranscoderJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_ingest_transcoder_jobs_in_progress",
			Help: "Number of tier transcoding jobs currently in progress",
		},
	)

	PosterGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_poster_generations_total",
			Help: "Total number of poster frame generations",
		},
		[]string{"status"},
	)
)

// Catalog metrics
var (
	AssetsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_ingest_assets",
			Help: "Number of committed assets in storage",
		},
	)

	AssetStorageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_ingest_asset_storage_bytes",
			Help: "Total bytes used by committed assets",
		},
	)

	RenditionsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_ingest_renditions",
			Help: "Number of rendition files on disk by tier",
		},
		[]string{"tier"},
	)

	CatalogOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_catalog_operations_total",
			Help: "Total number of catalog operations",
		},
		[]string{"operation", "status"},
	)

	CatalogOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_ingest_catalog_operation_duration_seconds",
			Help:    "Catalog operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_watcher_events_total",
			Help: "Total number of storage watcher events acted upon",
		},
		[]string{"event_type"},
	)
)

// Index (SQLite) metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_db_queries_total",
			Help: "Total number of asset index queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_ingest_db_query_duration_seconds",
			Help:    "Asset index query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries after ESTALE",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_ingest_filesystem_retry_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_ingest_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)
)

// Tool availability
var (
	ToolAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_ingest_tool_available",
			Help: "Whether an external tool was resolved at startup (1 = available)",
		},
		[]string{"tool"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_ingest_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// SetToolAvailable records whether tool was resolved.
func SetToolAvailable(tool string, available bool) {
	v := 0.0
	if available {
		v = 1
	}
	ToolAvailable.WithLabelValues(tool).Set(v)
}
