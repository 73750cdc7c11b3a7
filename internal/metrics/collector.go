package metrics

import (
	"time"

	"video-ingest/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current storage statistics
type Stats struct {
	Assets       int
	StorageBytes int64
	// Renditions counts rendition files per tier.
	Renditions map[string]int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	log           *logging.Logger
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration, log *logging.Logger) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
		log:           log.With("component", "metrics"),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	AssetsTotal.Set(float64(stats.Assets))
	AssetStorageBytes.Set(float64(stats.StorageBytes))
	for tier, n := range stats.Renditions {
		RenditionsTotal.WithLabelValues(tier).Set(float64(n))
	}

	c.log.Debug("Metrics collected: assets=%d, bytes=%d", stats.Assets, stats.StorageBytes)
}
