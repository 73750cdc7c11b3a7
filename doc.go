// Video-ingest accepts video uploads over HTTP, probes them with ffprobe and
// transcodes each one into high, medium and low renditions with ffmpeg.
//
// Every asset lives in its own directory under UPLOAD_DIR:
//
//	uploads/<id>/original.mp4
//	uploads/<id>/high.mp4
//	uploads/<id>/medium.mp4
//	uploads/<id>/low.mp4
//	uploads/<id>/poster.jpg
//
// Metadata and per-tier state are indexed in SQLite under DATABASE_DIR. The
// directory tree stays authoritative and the index is reconciled against it at
// startup.
//
// Usage:
//
//	video-ingest
//
// Configuration comes from the environment, an optional .env file and an
// optional YAML file named by CONFIG_FILE. See package startup for every key.
//
// SIGINT or SIGTERM stops background work, kills running ffmpeg processes and
// drains the HTTP server before exiting.
package main
