/*
Package workers sizes the tier transcode pool.

GOMAXPROCS follows cgroup CPU limits, so a pod limited to two CPUs runs two
ffmpeg processes even on a large node. The configured value (the
TRANSCODE_WORKERS setting, read by the startup package) overrides it.

	n := workers.ForTranscode(cfg.TranscodeWorkers)
*/
package workers
