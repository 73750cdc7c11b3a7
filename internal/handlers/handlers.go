package handlers

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
	"video-ingest/internal/startup"
)

// AssetService is the ingest surface the HTTP layer drives.
type AssetService interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*assets.Asset, error)
	List(ctx context.Context) ([]assets.Asset, error)
	Get(ctx context.Context, id string) (*assets.Asset, error)
	Delete(ctx context.Context, id string) error
	ResolveFile(id, file string) (string, error)
}

// Pinger reports whether the asset index is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	assets        AssetService
	index         Pinger
	uploadDir     string
	maxUploadSize int64
	tools         map[string]bool
	log           *logging.Logger
	started       time.Time
	ready         atomic.Bool
}

// New creates the HTTP handlers. index may be nil when the service runs
// without an asset index.
func New(svc AssetService, index Pinger, config *startup.Config, log *logging.Logger) *Handlers {
	maxUpload := config.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = startup.DefaultMaxUploadSize
	}
	return &Handlers{
		assets:        svc,
		index:         index,
		uploadDir:     config.UploadDir,
		maxUploadSize: maxUpload,
		tools: map[string]bool{
			"ffprobe": config.FFprobe.Available(),
			"ffmpeg":  config.FFmpeg.Available(),
		},
		log:     log.With("component", "http"),
		started: time.Now(),
	}
}

// SetReady marks startup reconciliation as finished.
func (h *Handlers) SetReady() {
	h.ready.Store(true)
}

// IsReady reports whether SetReady has been called.
func (h *Handlers) IsReady() bool {
	return h.ready.Load()
}
