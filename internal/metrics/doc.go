// Package metrics provides Prometheus instrumentation for the ingestion service.
//
// All metrics are prefixed with "video_ingest_" and registered with the
// default registry through promauto, so they are served by promhttp on the
// metrics port.
//
// # Metric Categories
//
//   - HTTP: requests, durations and in-flight requests per route
//   - Uploads: outcomes, persisted bytes, pipeline duration, id collisions
//   - Prober: ffprobe invocations and durations
//   - Transcoder: per-tier job outcomes, durations, in-progress jobs, posters
//   - Catalog: committed assets, storage bytes, renditions per tier, operations
//   - Index: SQLite query counts and durations
//   - Filesystem: ESTALE retry behavior per operation and volume
//
// [Collector] refreshes the storage gauges from a [StatsProvider] on an
// interval; [InitializeMetrics] pre-creates label combinations.
package metrics
