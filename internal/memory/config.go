package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"video-ingest/internal/logging"
)

// DefaultMemoryRatio is the share of the container limit handed to the Go heap.
// The rest is left for ffmpeg and ffprobe child processes.
const DefaultMemoryRatio = 0.5

const (
	sourceGOMEMLIMIT  = "GOMEMLIMIT"
	sourceMemoryLimit = "MEMORY_LIMIT"
	sourceNone        = "none"
)

// ConfigResult describes what ConfigureFromEnv did.
type ConfigResult struct {
	Configured bool

	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source string

	// ContainerLimit is the parsed MEMORY_LIMIT in bytes (0 if unset).
	ContainerLimit int64

	// GoMemLimit is the soft limit now in effect (0 if none).
	GoMemLimit int64

	Ratio float64
}

// ConfigureFromEnv sets the runtime memory limit from MEMORY_LIMIT and
// MEMORY_RATIO unless GOMEMLIMIT is already set.
func ConfigureFromEnv() ConfigResult {
	result := ConfigResult{Source: sourceNone}

	if goMemLimitEnv := os.Getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = sourceGOMEMLIMIT
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	memLimitStr := os.Getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT left unconfigured")
		return result
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil || memLimit <= 0 {
		logging.Warn("Invalid MEMORY_LIMIT %q, GOMEMLIMIT left unconfigured", memLimitStr)
		return result
	}

	ratio := ratioFromEnv()
	goMemLimit := int64(float64(memLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = sourceMemoryLimit
	result.ContainerLimit = memLimit
	result.GoMemLimit = goMemLimit
	result.Ratio = ratio

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		formatBytes(goMemLimit), ratio*100, formatBytes(memLimit))

	return result
}

func ratioFromEnv() float64 {
	value := os.Getenv("MEMORY_RATIO")
	if value == "" {
		return DefaultMemoryRatio
	}
	ratio, err := strconv.ParseFloat(value, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("Invalid MEMORY_RATIO %q, using default %.2f", value, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
