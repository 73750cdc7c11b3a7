package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/catalog"
	"video-ingest/internal/logging"
	"video-ingest/internal/metrics"
)

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*assets.Metadata, error)
}

// Transcoder derives every tier rendition from an original.
type Transcoder interface {
	Run(ctx context.Context, assetID, original string) assets.Renditions
}

// PosterGenerator writes an optional preview frame next to the original.
type PosterGenerator interface {
	Generate(ctx context.Context, original string) (string, error)
}

// Index persists asset metadata and state.
type Index interface {
	UpsertAsset(ctx context.Context, a *assets.Asset) error
	SetState(ctx context.Context, id string, state assets.State) error
	SetRenditions(ctx context.Context, id string, r assets.Renditions) error
	GetAsset(ctx context.Context, id string) (*assets.Asset, error)
	ListAssets(ctx context.Context) (map[string]*assets.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	PruneMissing(ctx context.Context, present []string) (int, error)
}

// Config wires a Service. Posters and Index are optional.
type Config struct {
	Catalog    *catalog.Catalog
	Prober     Prober
	Transcoder Transcoder
	Posters    PosterGenerator
	Index      Index
	Log        *logging.Logger
}

// Service implements upload, listing, lookup and deletion of assets.
type Service struct {
	catalog    *catalog.Catalog
	prober     Prober
	transcoder Transcoder
	posters    PosterGenerator
	index      Index
	log        *logging.Logger
	now        func() time.Time

	// inFlight holds ids that are committed but still transcoding.
	inFlight sync.Map
}

// New creates a Service from cfg.
func New(cfg Config) *Service {
	index := cfg.Index
	if index == nil {
		index = nopIndex{}
	}
	return &Service{
		catalog:    cfg.Catalog,
		prober:     cfg.Prober,
		transcoder: cfg.Transcoder,
		posters:    cfg.Posters,
		index:      index,
		log:        cfg.Log.With("component", "ingest"),
		now:        time.Now,
	}
}

// Upload ingests body as a new asset named filename. It returns a
// ValidationError for a rejected name, a ProbeError when the file is not
// usable video, and otherwise the committed asset with its tier outcomes.
func (s *Service) Upload(ctx context.Context, filename string, body io.Reader) (*assets.Asset, error) {
	start := time.Now()
	a, err := s.upload(ctx, filename, body)
	metrics.UploadDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.UploadsTotal.WithLabelValues("success").Inc()
	case assets.IsValidation(err):
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
	case assets.IsProbe(err):
		metrics.UploadsTotal.WithLabelValues("probe_error").Inc()
	default:
		metrics.UploadsTotal.WithLabelValues("error").Inc()
	}
	return a, err
}

func (s *Service) upload(ctx context.Context, filename string, body io.Reader) (*assets.Asset, error) {
	ext, err := assets.ValidateFilename(filename)
	if err != nil {
		return nil, err
	}

	res, err := s.catalog.Reserve(filename, ext)
	if err != nil {
		return nil, err
	}

	a := &assets.Asset{
		ID:                res.ID,
		OriginalName:      filename,
		OriginalExtension: ext,
		Renditions:        assets.PendingRenditions(),
		State:             assets.StateUploading,
	}
	log := s.log.With("asset", res.ID)
	log.Info("Receiving upload %q", filename)

	n, err := s.catalog.WriteStaging(res, body)
	if err != nil {
		s.purge(res, log)
		return nil, err
	}
	metrics.UploadBytes.Add(float64(n))

	s.advance(a, assets.StateProbing, log)
	meta, err := s.prober.Probe(ctx, res.StagingPath)
	if err != nil {
		s.purge(res, log)
		return nil, err
	}
	a.Metadata = meta

	// Mark before commit so Reconcile never sees the asset committed but idle.
	s.inFlight.Store(a.ID, struct{}{})
	defer s.inFlight.Delete(a.ID)

	original, err := s.catalog.Commit(res)
	if err != nil {
		s.purge(res, log)
		return nil, err
	}
	a.CreatedAt = s.now()
	log.Info("Committed %s (%dx%d, %.1fs, %d bytes)", original, meta.Width, meta.Height, meta.DurationSeconds, n)

	// From here on the asset exists; finish its tiers even if the client
	// goes away. Shutdown stops ffmpeg through the worker instead.
	work := context.WithoutCancel(ctx)

	s.advance(a, assets.StateTranscoding, log)
	if err := s.index.UpsertAsset(work, a); err != nil {
		log.Warn("Failed to index asset: %v", err)
	}

	if s.posters != nil {
		if _, err := s.posters.Generate(work, original); err != nil {
			log.Warn("Poster generation failed: %v", err)
		}
	}

	a.Renditions = s.transcoder.Run(work, a.ID, original)
	s.advance(a, assets.Settle(a.Renditions), log)

	if err := s.index.SetRenditions(work, a.ID, a.Renditions); err != nil {
		log.Warn("Failed to index renditions: %v", err)
	}
	if err := s.index.SetState(work, a.ID, a.State); err != nil {
		log.Warn("Failed to index state: %v", err)
	}

	log.Info("Upload complete: state=%s, %d/%d tiers", a.State, a.Renditions.Succeeded(), len(a.Renditions))
	return a, nil
}

// advance moves a to next, logging rather than failing on an unexpected
// transition since the pipeline order is fixed.
func (s *Service) advance(a *assets.Asset, next assets.State, log *logging.Logger) {
	state, err := a.State.To(next)
	if err != nil {
		log.Error("%v", err)
		a.State = next
		return
	}
	a.State = state
}

func (s *Service) purge(res *catalog.Reservation, log *logging.Logger) {
	if err := s.catalog.Purge(res); err != nil {
		log.Error("Failed to purge reservation: %v", err)
	}
}

// List returns every committed asset sorted by id.
func (s *Service) List(ctx context.Context) ([]assets.Asset, error) {
	entries, err := s.catalog.List()
	if err != nil {
		return nil, err
	}

	records, err := s.index.ListAssets(ctx)
	if err != nil {
		s.log.Warn("Asset index unavailable, listing from storage only: %v", err)
		records = nil
	}

	out := make([]assets.Asset, 0, len(entries))
	for _, e := range entries {
		out = append(out, merge(e, records[e.ID], s.isInFlight(e.ID)))
	}
	return out, nil
}

// Get returns one committed asset or a NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (*assets.Asset, error) {
	e, err := s.catalog.Get(id)
	if err != nil {
		return nil, err
	}

	rec, err := s.index.GetAsset(ctx, id)
	if err != nil {
		if !assets.IsNotFound(err) {
			s.log.Warn("Asset index lookup failed for %s: %v", id, err)
		}
		rec = nil
	}

	a := merge(e, rec, s.isInFlight(id))
	return &a, nil
}

// Delete removes an asset from storage and the index.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.catalog.Delete(id); err != nil {
		return err
	}
	s.Forget(ctx, id)
	return nil
}

// Forget drops the index rows of an asset whose directory is already gone.
func (s *Service) Forget(ctx context.Context, id string) {
	if err := s.index.DeleteAsset(ctx, id); err != nil {
		s.log.Warn("Failed to remove %s from index: %v", id, err)
	}
}

// ResolveFile maps a served file name of an asset to its path.
func (s *Service) ResolveFile(id, file string) (string, error) {
	return s.catalog.ResolveFile(id, file)
}

// Reconcile brings the index in line with storage: rows of vanished assets
// are removed, assets unknown to the index are probed and indexed, and
// assets left mid-pipeline by a previous process are settled. Uploads still
// running in this process are left to finish on their own.
func (s *Service) Reconcile(ctx context.Context) error {
	entries, err := s.catalog.List()
	if err != nil {
		return fmt.Errorf("scan storage: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	s.inFlight.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})

	removed, err := s.index.PruneMissing(ctx, ids)
	if err != nil {
		return fmt.Errorf("prune index: %w", err)
	}

	records, err := s.index.ListAssets(ctx)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	var added, settled int
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.isInFlight(e.ID) {
			continue
		}

		rec := records[e.ID]
		switch {
		case rec == nil:
			a := merge(e, nil, false)
			if meta, err := s.prober.Probe(ctx, e.OriginalPath); err == nil {
				a.Metadata = meta
			} else {
				s.log.Warn("Could not probe unindexed asset %s: %v", e.ID, err)
			}
			if err := s.index.UpsertAsset(ctx, &a); err != nil {
				return fmt.Errorf("index %s: %w", e.ID, err)
			}
			added++
		case !rec.State.Terminal():
			a := merge(e, rec, false)
			if err := s.index.SetRenditions(ctx, e.ID, a.Renditions); err != nil {
				return fmt.Errorf("settle %s: %w", e.ID, err)
			}
			if err := s.index.SetState(ctx, e.ID, a.State); err != nil {
				return fmt.Errorf("settle %s: %w", e.ID, err)
			}
			settled++
		}
	}

	s.log.Info("Index reconciled: %d assets, %d added, %d settled, %d removed", len(entries), added, settled, removed)
	return nil
}

func (s *Service) isInFlight(id string) bool {
	_, ok := s.inFlight.Load(id)
	return ok
}

var (
	errInterrupted = errors.New("transcode interrupted before completion")
	errMissing     = errors.New("rendition file missing")
)

// merge combines the scanned directory with its index record. Storage wins
// for which renditions exist; the record supplies metadata, names and
// failure reasons. A missing tier is pending only while the asset is still
// transcoding in this process.
func merge(e catalog.Entry, rec *assets.Asset, inFlight bool) assets.Asset {
	a := assets.Asset{
		ID:                e.ID,
		OriginalExtension: e.Extension,
		CreatedAt:         e.UploadTime,
		Renditions:        make(assets.Renditions, len(assets.Tiers)),
	}

	if rec != nil {
		a.OriginalName = rec.OriginalName
		a.Metadata = rec.Metadata
	}

	for _, t := range assets.Tiers {
		if p, ok := e.Renditions[t.Name]; ok {
			a.Renditions[t.Name] = assets.Rendition{State: assets.RenditionSucceeded, Path: p}
			continue
		}

		var prev assets.Rendition
		if rec != nil {
			prev = rec.Renditions[t.Name]
		}
		switch {
		case prev.State == assets.RenditionFailed:
			a.Renditions[t.Name] = prev
		case inFlight:
			a.Renditions[t.Name] = assets.Rendition{State: assets.RenditionPending}
		case prev.State == assets.RenditionSucceeded:
			a.Renditions[t.Name] = assets.Rendition{State: assets.RenditionFailed, Error: errMissing.Error()}
		default:
			a.Renditions[t.Name] = assets.Rendition{State: assets.RenditionFailed, Error: errInterrupted.Error()}
		}
	}

	if inFlight {
		a.State = assets.StateTranscoding
	} else {
		a.State = assets.Settle(a.Renditions)
	}
	return a
}
