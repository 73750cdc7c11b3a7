package ingest

import (
	"context"

	"video-ingest/internal/assets"
)

// nopIndex stands in when no asset index is configured.
type nopIndex struct{}

func (nopIndex) UpsertAsset(context.Context, *assets.Asset) error { return nil }

func (nopIndex) SetState(context.Context, string, assets.State) error { return nil }

func (nopIndex) SetRenditions(context.Context, string, assets.Renditions) error { return nil }

func (nopIndex) GetAsset(_ context.Context, id string) (*assets.Asset, error) {
	return nil, assets.NotFound("asset", id)
}

func (nopIndex) ListAssets(context.Context) (map[string]*assets.Asset, error) {
	return map[string]*assets.Asset{}, nil
}

func (nopIndex) DeleteAsset(context.Context, string) error { return nil }

func (nopIndex) PruneMissing(context.Context, []string) (int, error) { return 0, nil }
