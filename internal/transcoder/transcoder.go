package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
)

// DefaultTimeout bounds a single ffmpeg invocation.
const DefaultTimeout = 30 * time.Minute

// ErrStopped is returned by Encode after Cleanup.
var ErrStopped = errors.New("transcoder stopped")

// maxStderr caps how much ffmpeg diagnostic output is logged per failure.
const maxStderr = 2048

// Worker runs ffmpeg for one input and one tier at a time. It is safe for
// concurrent use; each call tracks its own process.
type Worker struct {
	binary    string
	timeout   time.Duration
	log       *logging.Logger
	processes map[string]*exec.Cmd
	processMu sync.Mutex
	stopped   bool
}

// New creates a Worker for the given ffmpeg binary. An empty binary means
// the tool could not be resolved; every Encode then fails.
func New(binary string, timeout time.Duration, log *logging.Logger) *Worker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Worker{
		binary:    binary,
		timeout:   timeout,
		log:       log.With("component", "transcoder"),
		processes: make(map[string]*exec.Cmd),
	}
}

// Available reports whether an ffmpeg binary was resolved.
func (w *Worker) Available() bool {
	return w.binary != ""
}

// OutputPath returns where Encode writes tier for an asset directory.
func OutputPath(assetDir string, tier assets.Tier, ext string) string {
	return filepath.Join(assetDir, assets.FileName(tier.Name, ext))
}

func partialPath(assetDir string, tier assets.Tier, ext string) string {
	return filepath.Join(assetDir, "."+tier.Name+".partial."+ext)
}

// Encode transcodes input into the tier rendition next to it. The result is
// written under a hidden name and renamed into place on success, so a
// rendition file exists only when it is complete. The asset directory is
// never created: if it was deleted meanwhile, Encode fails.
func (w *Worker) Encode(ctx context.Context, input string, tier assets.Tier) (string, error) {
	if !w.Available() {
		return "", &assets.TranscodeError{Tier: tier.Name, Reason: "ffmpeg unavailable"}
	}
	if w.isStopped() {
		return "", &assets.TranscodeError{Tier: tier.Name, Reason: "shutting down", Err: ErrStopped}
	}

	dir := filepath.Dir(input)
	ext := assets.Extension(input)
	output := OutputPath(dir, tier, ext)
	partial := partialPath(dir, tier, ext)

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, w.binary, Args(input, partial, tier, ext)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	w.log.Debug("Encoding %s tier %s", input, tier.Name)
	if err := w.start(partial, cmd); err != nil {
		reason := "ffmpeg did not start"
		if errors.Is(err, ErrStopped) {
			reason = "shutting down"
		}
		return "", &assets.TranscodeError{Tier: tier.Name, Reason: reason, Err: err}
	}

	err := cmd.Wait()
	w.untrack(partial)

	if err != nil {
		_ = os.Remove(partial)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &assets.TranscodeError{Tier: tier.Name, Reason: fmt.Sprintf("timed out after %s", w.timeout), Err: err}
		}
		if ctx.Err() != nil {
			return "", &assets.TranscodeError{Tier: tier.Name, Reason: "canceled", Err: ctx.Err()}
		}
		return "", &assets.TranscodeError{Tier: tier.Name, Reason: "encoder failed", Detail: tail(stderr.String()), Err: err}
	}

	if err := os.Rename(partial, output); err != nil {
		_ = os.Remove(partial)
		return "", &assets.TranscodeError{Tier: tier.Name, Reason: "publish failed", Err: err}
	}

	return output, nil
}

// Args builds the ffmpeg argument list for one tier. Codecs follow the
// container: H.264 for mp4, mov and avi (with MP3 audio in avi) and the
// WMV2 family for wmv, which cannot carry H.264.
func Args(input, output string, tier assets.Tier, ext string) []string {
	args := []string{
		"-y",
		"-nostdin",
		"-i", input,
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease:force_divisible_by=2", tier.Width, tier.Height),
	}

	maxrate := fmt.Sprintf("%dk", tier.Bitrate)
	bufsize := fmt.Sprintf("%dk", tier.Bitrate*2)

	switch ext {
	case "wmv":
		args = append(args,
			"-c:v", "wmv2",
			"-b:v", maxrate,
			"-c:a", "wmav2",
			"-b:a", "128k",
			"-f", "asf",
		)
	case "avi":
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-maxrate", maxrate,
			"-bufsize", bufsize,
			"-c:a", "libmp3lame",
			"-b:a", "128k",
			"-f", "avi",
		)
	default:
		format := "mp4"
		if ext == "mov" {
			format = "mov"
		}
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-maxrate", maxrate,
			"-bufsize", bufsize,
			"-c:a", "aac",
			"-b:a", "128k",
			"-movflags", "+faststart",
			"-f", format,
		)
	}

	return append(args, output)
}

// start launches cmd and tracks it under key. Once Cleanup has run no new
// process is started, so tiers still queued behind the worker limit fail.
func (w *Worker) start(key string, cmd *exec.Cmd) error {
	w.processMu.Lock()
	defer w.processMu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	w.processes[key] = cmd
	return nil
}

func (w *Worker) untrack(key string) {
	w.processMu.Lock()
	delete(w.processes, key)
	w.processMu.Unlock()
}

func (w *Worker) isStopped() bool {
	w.processMu.Lock()
	defer w.processMu.Unlock()
	return w.stopped
}

// Running returns the number of ffmpeg processes in flight.
func (w *Worker) Running() int {
	w.processMu.Lock()
	defer w.processMu.Unlock()
	return len(w.processes)
}

// Cleanup stops all active transcoding processes and refuses new ones.
func (w *Worker) Cleanup() {
	w.processMu.Lock()
	defer w.processMu.Unlock()

	w.stopped = true

	for path, cmd := range w.processes {
		if cmd.Process != nil {
			w.log.Info("Killing transcoding process for: %s", path)
			if err := cmd.Process.Kill(); err != nil {
				w.log.Warn("failed to kill transcoding process for %s: %v", path, err)
			}
		}
	}
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	if s == "" {
		return "no output"
	}
	return s
}
