package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"video-ingest/internal/logging"
)

// writeFrame encodes a solid w x h PNG and returns its path.
func writeFrame(t *testing.T, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

func writeOriginal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "original.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGeneratePoster(t *testing.T) {
	frame := writeFrame(t, 1920, 1080)
	gen := NewPosterGenerator(writeScript(t, "cat '"+frame+"'"), true, logging.Nop())
	original := writeOriginal(t)

	path, err := gen.Generate(context.Background(), original)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if filepath.Base(path) != "poster.jpg" || filepath.Dir(path) != filepath.Dir(original) {
		t.Errorf("Unexpected poster path %s", path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Failed to open poster: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != PosterWidth || b.Dy() != PosterHeight {
		t.Errorf("Expected %dx%d poster, got %dx%d", PosterWidth, PosterHeight, b.Dx(), b.Dy())
	}
}

func TestGeneratePosterKeepsAspect(t *testing.T) {
	frame := writeFrame(t, 480, 640)
	gen := NewPosterGenerator(writeScript(t, "cat '"+frame+"'"), true, logging.Nop())

	path, err := gen.Generate(context.Background(), writeOriginal(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != PosterHeight || cfg.Width != 135 {
		t.Errorf("Expected portrait frame fitted to 135x180, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestGeneratePosterFallsBackToFirstFrame(t *testing.T) {
	frame := writeFrame(t, 64, 36)
	// fail when seeking, succeed otherwise
	script := `case "$*" in *-ss*) exit 1;; esac
cat '` + frame + `'`
	gen := NewPosterGenerator(writeScript(t, script), true, logging.Nop())

	if _, err := gen.Generate(context.Background(), writeOriginal(t)); err != nil {
		t.Errorf("Expected fallback to first frame, got %v", err)
	}
}

func TestGeneratePosterFailure(t *testing.T) {
	gen := NewPosterGenerator(writeScript(t, "echo 'moov atom not found' >&2\nexit 1"), true, logging.Nop())
	original := writeOriginal(t)

	if _, err := gen.Generate(context.Background(), original); err == nil {
		t.Error("Expected error when ffmpeg fails")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(original), "poster.jpg")); !os.IsNotExist(err) {
		t.Error("No poster should exist after failure")
	}
}

func TestGeneratePosterGarbageOutput(t *testing.T) {
	gen := NewPosterGenerator(writeScript(t, "echo not-a-png"), true, logging.Nop())

	if _, err := gen.Generate(context.Background(), writeOriginal(t)); err == nil {
		t.Error("Expected decode error for non-image output")
	}
}

func TestGeneratePosterDisabled(t *testing.T) {
	tests := []struct {
		name    string
		binary  string
		enabled bool
	}{
		{name: "disabled", binary: "/usr/bin/ffmpeg", enabled: false},
		{name: "no binary", binary: "", enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewPosterGenerator(tt.binary, tt.enabled, logging.Nop())
			if gen.IsEnabled() {
				t.Error("Expected generator to be disabled")
			}
			if _, err := gen.Generate(context.Background(), "/x/original.mp4"); !errors.Is(err, ErrDisabled) {
				t.Errorf("Expected ErrDisabled, got %v", err)
			}
		})
	}
}
