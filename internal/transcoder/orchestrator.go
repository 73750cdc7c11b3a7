package transcoder

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
	"video-ingest/internal/metrics"
)

// Encoder produces one rendition of input.
type Encoder interface {
	Encode(ctx context.Context, input string, tier assets.Tier) (string, error)
}

// Orchestrator fans an original out to every tier and collects the outcomes.
type Orchestrator struct {
	encoder Encoder
	tiers   []assets.Tier
	workers int
	log     *logging.Logger
}

// NewOrchestrator runs tiers through encoder with at most workers concurrent
// encodes. workers below 1 means one encode at a time.
func NewOrchestrator(encoder Encoder, workers int, log *logging.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		encoder: encoder,
		tiers:   assets.Tiers,
		workers: workers,
		log:     log.With("component", "orchestrator"),
	}
}

// Workers returns the concurrency limit.
func (o *Orchestrator) Workers() int {
	return o.workers
}

// Run encodes every tier and waits for all of them. A failed tier is
// recorded as failed and never cancels its siblings, so Run itself has no
// error result.
func (o *Orchestrator) Run(ctx context.Context, assetID, original string) assets.Renditions {
	results := assets.PendingRenditions()
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(o.workers)

	for _, tier := range o.tiers {
		tier := tier
		g.Go(func() error {
			r := o.runTier(ctx, assetID, original, tier)
			mu.Lock()
			results[tier.Name] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	o.log.Info("Transcoded %s: %d/%d tiers succeeded", assetID, results.Succeeded(), len(o.tiers))
	return results
}

func (o *Orchestrator) runTier(ctx context.Context, assetID, original string, tier assets.Tier) assets.Rendition {
	metrics.TranscoderJobsInProgress.Inc()
	defer metrics.TranscoderJobsInProgress.Dec()

	start := time.Now()
	path, err := o.encoder.Encode(ctx, original, tier)
	metrics.TranscoderJobDuration.WithLabelValues(tier.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.TranscoderJobsTotal.WithLabelValues(tier.Name, "error").Inc()
		o.log.Error("Tier %s failed for %s: %v", tier.Name, assetID, err)
		return assets.Rendition{State: assets.RenditionFailed, Error: assets.TranscodeReason(err)}
	}

	metrics.TranscoderJobsTotal.WithLabelValues(tier.Name, "success").Inc()
	o.log.Debug("Tier %s ready for %s in %s", tier.Name, assetID, time.Since(start).Round(time.Millisecond))
	return assets.Rendition{State: assets.RenditionSucceeded, Path: path}
}
