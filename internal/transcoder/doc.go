// Package transcoder derives fixed-tier renditions of an uploaded video with FFmpeg.
//
// It supports:
//   - Per-tier encoding ([Worker.Encode]) with container-appropriate codecs
//   - Atomic publication of each rendition (hidden partial file, then rename)
//   - Bounded parallel fan-out over all tiers ([Orchestrator.Run])
//   - Killing in-flight ffmpeg processes on shutdown ([Worker.Cleanup])
//
// A tier failure is recorded in the returned renditions and never aborts the
// other tiers. The ffmpeg binary is resolved at startup and passed to [New].
package transcoder
