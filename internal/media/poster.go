package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // ffmpeg emits PNG frames
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
	"video-ingest/internal/metrics"
)

// Poster dimensions and encoding.
const (
	PosterWidth   = 320
	PosterHeight  = 180
	posterQuality = 80
	posterTimeout = 30 * time.Second
)

// ErrDisabled is returned when poster generation is turned off or ffmpeg
// is unavailable.
var ErrDisabled = errors.New("poster generation disabled")

// PosterGenerator extracts and stores poster frames.
type PosterGenerator struct {
	binary  string
	enabled bool
	timeout time.Duration
	log     *logging.Logger
}

// NewPosterGenerator creates a generator using the given ffmpeg binary.
func NewPosterGenerator(binary string, enabled bool, log *logging.Logger) *PosterGenerator {
	log = log.With("component", "poster")
	if enabled && binary == "" {
		log.Warn("Poster generation requested but ffmpeg is unavailable")
	}
	return &PosterGenerator{
		binary:  binary,
		enabled: enabled,
		timeout: posterTimeout,
		log:     log,
	}
}

// IsEnabled reports whether posters will be generated.
func (p *PosterGenerator) IsEnabled() bool {
	return p.enabled && p.binary != ""
}

// Generate writes poster.jpg into the directory of original and returns its
// path.
func (p *PosterGenerator) Generate(ctx context.Context, original string) (string, error) {
	if !p.IsEnabled() {
		return "", ErrDisabled
	}

	path, err := p.generate(ctx, original)
	if err != nil {
		metrics.PosterGenerationsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.PosterGenerationsTotal.WithLabelValues("success").Inc()
	return path, nil
}

func (p *PosterGenerator) generate(ctx context.Context, original string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	img, err := p.extractFrame(ctx, original)
	if err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, PosterWidth, PosterHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: posterQuality}); err != nil {
		return "", fmt.Errorf("failed to encode poster: %w", err)
	}

	dir := filepath.Dir(original)
	final := filepath.Join(dir, assets.PosterFile)
	tmp := filepath.Join(dir, "."+assets.PosterFile+".tmp")

	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write poster: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to publish poster: %w", err)
	}

	p.log.Debug("Poster written: %s", final)
	return final, nil
}

// extractFrame grabs a frame at one second, retrying from the start of the
// stream when the clip is shorter than that.
func (p *PosterGenerator) extractFrame(ctx context.Context, original string) (image.Image, error) {
	data, err := p.runFFmpeg(ctx, "-ss", "00:00:01", "-i", original)
	if err != nil || len(data) == 0 {
		p.log.Debug("Frame at 1s failed for %s: %v, trying first frame", original, err)
		data, err = p.runFFmpeg(ctx, "-i", original)
		if err != nil {
			return nil, err
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", original)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

func (p *PosterGenerator) runFFmpeg(ctx context.Context, input ...string) ([]byte, error) {
	args := append([]string{"-nostdin", "-v", "error"}, input...)
	args = append(args, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-")

	cmd := exec.CommandContext(ctx, p.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
