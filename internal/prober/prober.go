package prober

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
	"video-ingest/internal/metrics"
)

// DefaultTimeout bounds a single ffprobe invocation.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNoVideoStream means the output lists no stream with codec_type "video".
	ErrNoVideoStream = errors.New("no video stream")
	// ErrMissingField means a required field is absent or not numeric.
	ErrMissingField = errors.New("missing or non-numeric field")
)

// Prober runs ffprobe against files.
type Prober struct {
	binary  string
	timeout time.Duration
	log     *logging.Logger
}

// New creates a Prober for the given ffprobe binary. An empty binary means
// the tool could not be resolved.
func New(binary string, timeout time.Duration, log *logging.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		binary:  binary,
		timeout: timeout,
		log:     log.With("component", "prober"),
	}
}

// Available reports whether an ffprobe binary was resolved.
func (p *Prober) Available() bool {
	return p.binary != ""
}

// Probe returns the metadata of the first video stream in path.
func (p *Prober) Probe(ctx context.Context, path string) (*assets.Metadata, error) {
	start := time.Now()
	meta, err := p.probe(ctx, path)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProbesTotal.WithLabelValues("error").Inc()
		p.log.Warn("Probe failed for %s: %v", path, err)
		return nil, err
	}
	metrics.ProbesTotal.WithLabelValues("success").Inc()
	p.log.Debug("Probed %s: %dx%d, %.2fs", path, meta.Width, meta.Height, meta.DurationSeconds)
	return meta, nil
}

func (p *Prober) probe(ctx context.Context, path string) (*assets.Metadata, error) {
	if !p.Available() {
		return nil, &assets.ProbeError{Path: path, Reason: "ffprobe unavailable"}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &assets.ProbeError{Path: path, Reason: "ffprobe unavailable", Err: err}
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &assets.ProbeError{Path: path, Reason: fmt.Sprintf("ffprobe timed out after %v", p.timeout), Err: ctx.Err()}
		}
		return nil, &assets.ProbeError{
			Path:   path,
			Reason: "ffprobe failed",
			Detail: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	meta, err := ParseJSON(stdout.Bytes())
	if errors.Is(err, ErrNoVideoStream) {
		return nil, &assets.ProbeError{Path: path, Reason: "no video stream", Err: err}
	}
	if err != nil {
		return nil, &assets.ProbeError{Path: path, Reason: "unusable ffprobe output", Err: err}
	}
	return meta, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  *ffprobeFormat  `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string      `json:"codec_type"`
	Width     json.Number `json:"width"`
	Height    json.Number `json:"height"`
}

// ParseJSON converts raw ffprobe JSON output into Metadata. The first video
// stream is authoritative; the duration comes from the container.
func ParseJSON(data []byte) (*assets.Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	var video *ffprobeStream
	for i := range raw.Streams {
		if raw.Streams[i].CodecType == "video" {
			video = &raw.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	width, err := positiveInt("width", video.Width)
	if err != nil {
		return nil, err
	}
	height, err := positiveInt("height", video.Height)
	if err != nil {
		return nil, err
	}

	if raw.Format == nil {
		return nil, fmt.Errorf("format.duration: %w", ErrMissingField)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64)
	if err != nil || duration < 0 {
		return nil, fmt.Errorf("format.duration %q: %w", raw.Format.Duration, ErrMissingField)
	}

	return &assets.Metadata{
		Width:           width,
		Height:          height,
		DurationSeconds: duration,
	}, nil
}

func positiveInt(field string, n json.Number) (int, error) {
	v, err := strconv.Atoi(n.String())
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("stream.%s %q: %w", field, n.String(), ErrMissingField)
	}
	return v, nil
}
