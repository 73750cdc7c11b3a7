package startup

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"video-ingest/internal/logging"
)

// ErrToolNotFound is returned by ResolveTool when no candidate runs.
var ErrToolNotFound = errors.New("tool not found")

const toolCheckTimeout = 5 * time.Second

// Tool is an external binary resolved at startup.
type Tool struct {
	Name    string
	Path    string
	Version string
}

// Available reports whether the tool resolved to a runnable binary.
func (t Tool) Available() bool {
	return t.Path != ""
}

// ResolveTool returns the first candidate that answers "-version" with a zero
// exit status. Bare names are looked up on PATH.
func ResolveTool(name string, candidates []string) (Tool, error) {
	var lastErr error
	for _, candidate := range candidates {
		path, err := exec.LookPath(candidate)
		if err != nil {
			lastErr = err
			logging.Debug("  %s candidate %s: %v", name, candidate, err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), toolCheckTimeout)
		output, err := exec.CommandContext(ctx, path, "-version").Output()
		cancel()
		if err != nil {
			lastErr = err
			logging.Debug("  %s candidate %s failed version check: %v", name, path, err)
			continue
		}

		version := ""
		if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
			version = strings.TrimSpace(line)
		}
		return Tool{Name: name, Path: path, Version: version}, nil
	}

	if lastErr != nil {
		return Tool{Name: name}, fmt.Errorf("%w: %s (tried %s): %v", ErrToolNotFound, name, strings.Join(candidates, ", "), lastErr)
	}
	return Tool{Name: name}, fmt.Errorf("%w: %s (no candidates configured)", ErrToolNotFound, name)
}

// resolveTools fills in config.FFprobe and config.FFmpeg.
func resolveTools(config *Config) error {
	var missing []string
	for _, spec := range []struct {
		name       string
		candidates []string
		dst        *Tool
	}{
		{"ffprobe", config.FFprobePaths, &config.FFprobe},
		{"ffmpeg", config.FFmpegPaths, &config.FFmpeg},
	} {
		tool, err := ResolveTool(spec.name, spec.candidates)
		*spec.dst = tool
		if err != nil {
			logging.Warn("%s not available: %v", spec.name, err)
			missing = append(missing, spec.name)
			continue
		}
		logging.Info("Using %s at %s", spec.name, tool.Path)
		if tool.Version != "" {
			logging.Debug("%s", tool.Version)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	if config.RequireTools {
		return fmt.Errorf("required tools unavailable: %s", strings.Join(missing, ", "))
	}
	logging.Warn("Uploads and transcodes depending on %s will fail until the tools are installed", strings.Join(missing, ", "))
	return nil
}
