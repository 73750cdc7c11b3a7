// Package startup loads configuration, prepares storage directories and
// resolves the external tools before the server starts.
//
// # Configuration
//
// [LoadConfig] layers three sources, lowest precedence first: built-in
// defaults, an optional YAML file named by CONFIG_FILE, and the environment.
// A .env file in the working directory is loaded into the environment first;
// it never overrides variables that are already set.
//
//   - UPLOAD_DIR: Root of the asset catalog (default: uploads)
//   - DATABASE_DIR: Directory holding assets.db (default: data)
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - MAX_UPLOAD_SIZE: Maximum upload body in bytes (default: 500 MiB)
//   - PROBE_TIMEOUT: ffprobe deadline as Go duration (default: 30s)
//   - TRANSCODE_TIMEOUT: Per-tier ffmpeg deadline as Go duration (default: 30m)
//   - TRANSCODE_WORKERS: Concurrent tier encodes, 0 for automatic (default: 0)
//   - POSTERS_ENABLED: Extract a poster frame after upload (default: true)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - FFPROBE_PATHS, FFMPEG_PATHS: Comma-separated candidate binaries
//   - REQUIRE_TOOLS: Fail startup when ffprobe or ffmpeg cannot be resolved
//   - LOG_LEVEL, LOG_FORMAT: Logger level and output format
//   - LOG_STATIC_FILES: Log rendition downloads (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// The YAML file uses snake_case keys for the same settings, with tool
// candidates under tools.ffprobe and tools.ffmpeg:
//
//	upload_dir: /srv/uploads
//	transcode_timeout: 45m
//	tools:
//	  ffprobe: [/usr/local/bin/ffprobe, ffprobe]
//	  ffmpeg: [/usr/local/bin/ffmpeg, ffmpeg]
//
// # External Tools
//
// [ResolveTool] picks the first candidate that answers -version. Tools are
// resolved once during [LoadConfig]; a missing tool is fatal only when
// REQUIRE_TOOLS is set.
//
// # Lifecycle Logging
//
// The Log* functions write one line per startup or shutdown milestone
// through the default logger. [LogRoutes] lists the router at debug level.
package startup
