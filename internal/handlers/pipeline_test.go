package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video-ingest/internal/catalog"
	"video-ingest/internal/ingest"
	"video-ingest/internal/logging"
	"video-ingest/internal/prober"
	"video-ingest/internal/startup"
	"video-ingest/internal/transcoder"

	"github.com/gorilla/mux"
)

const videoStreamJSON = `{"streams":[{"codec_type":"video","width":1280,"height":720}],"format":{"duration":"4.0"}}`

// writeTool writes an executable shell script standing in for ffprobe or ffmpeg.
func writeTool(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// newPipelineRouter serves the real ingest pipeline over root with the given tools.
func newPipelineRouter(t *testing.T, root, ffprobe, ffmpeg string) *mux.Router {
	t.Helper()
	cat, err := catalog.New(root, logging.Nop())
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	svc := ingest.New(ingest.Config{
		Catalog:    cat,
		Prober:     prober.New(ffprobe, time.Second, logging.Nop()),
		Transcoder: transcoder.NewOrchestrator(transcoder.New(ffmpeg, time.Second, logging.Nop()), 3, logging.Nop()),
		Log:        logging.Nop(),
	})
	config := &startup.Config{
		UploadDir: root,
		FFprobe:   startup.Tool{Name: "ffprobe", Path: ffprobe},
		FFmpeg:    startup.Tool{Name: "ffmpeg", Path: ffmpeg},
	}
	h := New(svc, nil, config, logging.Nop())
	h.SetReady()
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func upload(t *testing.T, router http.Handler, filename string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "video", filename, []byte("not really a video"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUnreadableUploadHidesServerPaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	ffprobe := writeTool(t, "ffprobe", `for last; do :; done
echo "$last: Invalid data found when processing input" >&2
exit 1`)
	router := newPipelineRouter(t, root, ffprobe, writeTool(t, "ffmpeg", "exit 0"))

	w := upload(t, router, "clip.mp4")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), root) {
		t.Errorf("Error response leaks the storage root: %s", w.Body.String())
	}
	if msg := decodeError(t, w); msg != "could not read video file: ffprobe failed" {
		t.Errorf("Expected fixed ffprobe failure message, got %q", msg)
	}
}

func TestTranscodeFailureHidesServerPaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	ffprobe := writeTool(t, "ffprobe", "echo '"+videoStreamJSON+"'")
	ffmpeg := writeTool(t, "ffmpeg", `for last; do :; done
echo "$last: Permission denied" >&2
exit 1`)
	router := newPipelineRouter(t, root, ffprobe, ffmpeg)

	w := upload(t, router, "clip.mp4")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), root) {
		t.Errorf("Upload response leaks the storage root: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"error":"encoder failed"`) {
		t.Errorf("Expected failed tiers to report a fixed reason, got %s", w.Body.String())
	}

	for _, path := range []string{"/api/videos", "/api/health"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if strings.Contains(rec.Body.String(), root) {
			t.Errorf("GET %s leaks the storage root: %s", path, rec.Body.String())
		}
	}
}
