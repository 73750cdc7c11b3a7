package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(tiers []string) {
	for _, status := range []string{"success", "invalid", "probe_error", "error"} {
		UploadsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error"} {
		ProbesTotal.WithLabelValues(status)
		PosterGenerationsTotal.WithLabelValues(status)
	}

	for _, tier := range tiers {
		TranscoderJobsTotal.WithLabelValues(tier, "success")
		TranscoderJobsTotal.WithLabelValues(tier, "error")
		TranscoderJobDuration.WithLabelValues(tier)
		RenditionsTotal.WithLabelValues(tier)
	}

	for _, op := range []string{"reserve", "commit", "list", "get", "delete", "resolve", "prune"} {
		CatalogOperationsTotal.WithLabelValues(op, "success")
		CatalogOperationsTotal.WithLabelValues(op, "error")
		CatalogOperationDuration.WithLabelValues(op)
	}

	volumes := []string{"uploads", "database", "unknown"}
	for _, op := range []string{"stat", "open"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, tool := range []string{"ffprobe", "ffmpeg"} {
		ToolAvailable.WithLabelValues(tool)
	}
}
