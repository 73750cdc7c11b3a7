package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"video-ingest/internal/startup"

	"github.com/shirou/gopsutil/v4/disk"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
	statusError    = "error"

	healthCheckTimeout = 2 * time.Second
)

// StorageStatus describes the volume holding the upload directory. The
// directory itself is only logged.
type StorageStatus struct {
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedPercent float64 `json:"usedPercent"`
	Error       string  `json:"error,omitempty"`
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status           string          `json:"status"`
	Ready            bool            `json:"ready"`
	Version          string          `json:"version"`
	Uptime           string          `json:"uptime"`
	ToolAvailability map[string]bool `json:"toolAvailability"`
	Storage          StorageStatus   `json:"storage"`
	Index            string          `json:"index"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports tool availability, storage capacity and index
// reachability. Missing tools or an unreachable index answer 503; an
// unreadable upload volume answers 500.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:           statusHealthy,
		Ready:            h.IsReady(),
		Version:          startup.Version,
		Uptime:           time.Since(h.started).Round(time.Second).String(),
		ToolAvailability: h.tools,
		Storage:          h.storageStatus(ctx),
		Index:            h.indexStatus(ctx),
		GoVersion:        runtime.Version(),
		NumGoroutine:     runtime.NumGoroutine(),
	}

	code := http.StatusOK
	for _, ok := range h.tools {
		if !ok {
			response.Status = statusDegraded
		}
	}
	if response.Index == statusError {
		response.Status = statusDegraded
	}
	if !response.Ready && response.Status == statusHealthy {
		response.Status = statusStarting
	}
	if response.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	if response.Storage.Error != "" {
		response.Status = statusError
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	writeJSON(w, response)
}

func (h *Handlers) storageStatus(ctx context.Context) StorageStatus {
	var status StorageStatus
	usage, err := disk.UsageWithContext(ctx, h.uploadDir)
	if err != nil {
		h.log.Warn("Disk usage check failed for %s: %v", h.uploadDir, err)
		status.Error = "storage unavailable"
		return status
	}
	status.TotalBytes = usage.Total
	status.FreeBytes = usage.Free
	status.UsedPercent = usage.UsedPercent
	return status
}

func (h *Handlers) indexStatus(ctx context.Context) string {
	if h.index == nil {
		return "disabled"
	}
	if err := h.index.Ping(ctx); err != nil {
		h.log.Warn("Index ping failed: %v", err)
		return statusError
	}
	return "ok"
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 once startup reconciliation has finished and
// the index answers.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if h.IsReady() && h.indexStatus(ctx) != statusError {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
