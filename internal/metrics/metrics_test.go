package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"video-ingest/internal/logging"
)

type fakeStats struct {
	mu    sync.Mutex
	stats Stats
	calls int
}

func (f *fakeStats) GetStats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.stats
}

func (f *fakeStats) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCollectorUpdatesGauges(t *testing.T) {
	provider := &fakeStats{stats: Stats{
		Assets:       4,
		StorageBytes: 2048,
		Renditions:   map[string]int{"high": 3, "low": 4},
	}}

	c := NewCollector(provider, time.Hour, logging.Nop())
	c.collect()

	if got := testutil.ToFloat64(AssetsTotal); got != 4 {
		t.Errorf("Expected assets gauge 4, got %v", got)
	}
	if got := testutil.ToFloat64(AssetStorageBytes); got != 2048 {
		t.Errorf("Expected storage gauge 2048, got %v", got)
	}
	if got := testutil.ToFloat64(RenditionsTotal.WithLabelValues("high")); got != 3 {
		t.Errorf("Expected high renditions 3, got %v", got)
	}
}

func TestCollectorStartStop(t *testing.T) {
	provider := &fakeStats{}
	c := NewCollector(provider, 10*time.Millisecond, logging.Nop())

	c.Start()
	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.callCount() < 2 {
		t.Errorf("Expected at least 2 collections, got %d", provider.callCount())
	}
}

func TestCollectorNilProvider(_ *testing.T) {
	c := NewCollector(nil, time.Hour, logging.Nop())
	c.collect()
}

func TestSetToolAvailable(t *testing.T) {
	SetToolAvailable("ffmpeg", true)
	if got := testutil.ToFloat64(ToolAvailable.WithLabelValues("ffmpeg")); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}

	SetToolAvailable("ffmpeg", false)
	if got := testutil.ToFloat64(ToolAvailable.WithLabelValues("ffmpeg")); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics([]string{"high", "medium", "low"})

	if got := testutil.ToFloat64(TranscoderJobsTotal.WithLabelValues("medium", "error")); got != 0 {
		t.Errorf("Expected pre-populated counter at 0, got %v", got)
	}
}

func TestFilesystemObserver(t *testing.T) {
	o := NewFilesystemObserver()
	before := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("stat", "uploads"))

	o.ObserveStaleError("stat", "uploads")
	o.ObserveRetryAttempt("stat", "uploads")
	o.ObserveRetrySuccess("stat", "uploads")
	o.ObserveRetryFailure("stat", "uploads")
	o.ObserveRetryDuration("stat", "uploads", 0.01)

	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("stat", "uploads")); got != before+1 {
		t.Errorf("Expected stale errors %v, got %v", before+1, got)
	}
}
