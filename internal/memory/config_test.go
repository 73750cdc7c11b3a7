package memory

import (
	"runtime/debug"
	"testing"
)

// clearMemoryEnv unsets the variables ConfigureFromEnv reads and restores the
// runtime limit when the test ends.
func clearMemoryEnv(t *testing.T) {
	t.Helper()
	previous := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(previous) })
	for _, key := range []string{"GOMEMLIMIT", "MEMORY_LIMIT", "MEMORY_RATIO"} {
		t.Setenv(key, "")
	}
}

func TestConfigureFromEnvUnset(t *testing.T) {
	clearMemoryEnv(t)

	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false when no env vars set")
	}
	if result.Source != sourceNone {
		t.Errorf("Expected Source %q, got %q", sourceNone, result.Source)
	}
	if result.GoMemLimit != 0 || result.ContainerLimit != 0 {
		t.Errorf("Expected zero limits, got %+v", result)
	}
}

func TestConfigureFromEnvMemoryLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     string
		ratio     string
		wantRatio float64
	}{
		{name: "default ratio", limit: "1073741824", wantRatio: DefaultMemoryRatio},
		{name: "custom ratio", limit: "1073741824", ratio: "0.25", wantRatio: 0.25},
		{name: "ratio above one", limit: "1073741824", ratio: "1.5", wantRatio: DefaultMemoryRatio},
		{name: "ratio not a number", limit: "1073741824", ratio: "half", wantRatio: DefaultMemoryRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearMemoryEnv(t)
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			result := ConfigureFromEnv()

			if !result.Configured {
				t.Fatal("Expected Configured to be true")
			}
			if result.Source != sourceMemoryLimit {
				t.Errorf("Expected Source %q, got %q", sourceMemoryLimit, result.Source)
			}
			if result.Ratio != tt.wantRatio {
				t.Errorf("Expected ratio %v, got %v", tt.wantRatio, result.Ratio)
			}
			want := int64(float64(1073741824) * tt.wantRatio)
			if result.GoMemLimit != want {
				t.Errorf("Expected GoMemLimit %d, got %d", want, result.GoMemLimit)
			}
			if got := debug.SetMemoryLimit(-1); got != want {
				t.Errorf("Expected runtime limit %d, got %d", want, got)
			}
		})
	}
}

func TestConfigureFromEnvInvalidLimit(t *testing.T) {
	for _, value := range []string{"lots", "-5", "0"} {
		t.Run(value, func(t *testing.T) {
			clearMemoryEnv(t)
			t.Setenv("MEMORY_LIMIT", value)

			result := ConfigureFromEnv()

			if result.Configured {
				t.Errorf("Expected Configured to be false for MEMORY_LIMIT=%q", value)
			}
		})
	}
}

func TestConfigureFromEnvGOMEMLIMITWins(t *testing.T) {
	clearMemoryEnv(t)
	t.Setenv("GOMEMLIMIT", "500MiB")
	t.Setenv("MEMORY_LIMIT", "1073741824")
	debug.SetMemoryLimit(500 << 20)

	result := ConfigureFromEnv()

	if result.Source != sourceGOMEMLIMIT {
		t.Errorf("Expected Source %q, got %q", sourceGOMEMLIMIT, result.Source)
	}
	if result.GoMemLimit != 500<<20 {
		t.Errorf("Expected GoMemLimit %d, got %d", 500<<20, result.GoMemLimit)
	}
	if result.ContainerLimit != 0 {
		t.Errorf("Expected MEMORY_LIMIT to be ignored, got %d", result.ContainerLimit)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{512 << 20, "512.0 MiB"},
		{1 << 30, "1.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
