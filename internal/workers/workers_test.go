package workers

import (
	"runtime"
	"testing"
)

func TestForTranscodeConfigured(t *testing.T) {
	tests := []struct {
		configured int
		want       int
	}{
		{1, 1},
		{2, 2},
		{MaxTranscodeWorkers, MaxTranscodeWorkers},
		{MaxTranscodeWorkers + 5, MaxTranscodeWorkers},
	}
	for _, tt := range tests {
		if got := ForTranscode(tt.configured); got != tt.want {
			t.Errorf("ForTranscode(%d): expected %d, got %d", tt.configured, tt.want, got)
		}
	}
}

func TestForTranscodeAutomatic(t *testing.T) {
	prev := runtime.GOMAXPROCS(0)
	t.Cleanup(func() { runtime.GOMAXPROCS(prev) })

	tests := []struct {
		procs int
		want  int
	}{
		{1, 1},
		{2, 2},
		{64, MaxTranscodeWorkers},
	}
	for _, tt := range tests {
		runtime.GOMAXPROCS(tt.procs)
		for _, configured := range []int{0, -1} {
			if got := ForTranscode(configured); got != tt.want {
				t.Errorf("GOMAXPROCS=%d ForTranscode(%d): expected %d, got %d",
					tt.procs, configured, tt.want, got)
			}
		}
	}
}

func TestForTranscodeIgnoresEnvironment(t *testing.T) {
	t.Setenv("TRANSCODE_WORKERS", "1")
	if got := ForTranscode(2); got != 2 {
		t.Errorf("Expected configured value 2 to stand, got %d", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ n, lo, hi, want int }{
		{0, 1, 3, 1},
		{2, 1, 3, 2},
		{9, 1, 3, 3},
	}
	for _, tt := range tests {
		if got := clamp(tt.n, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d): expected %d, got %d", tt.n, tt.lo, tt.hi, tt.want, got)
		}
	}
}
