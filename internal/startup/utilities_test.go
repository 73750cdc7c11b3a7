package startup

import (
	"reflect"
	"testing"
	"time"
)

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"FALSE", true, false},
		{"0", true, false},
		{"yes", true, true},
		{"yes", false, false},
	}
	for _, tt := range tests {
		t.Setenv("POSTERS_ENABLED", tt.value)
		if got := getEnvBool("POSTERS_ENABLED", tt.fallback); got != tt.want {
			t.Errorf("POSTERS_ENABLED=%q fallback %v: expected %v, got %v", tt.value, tt.fallback, tt.want, got)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{DefaultMaxUploadSize, "500.0 MiB"},
		{10737418, "10.2 MiB"},
		{5 << 30, "5.0 GiB"},
		{1 << 60, "1.0 EiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d): expected %q, got %q", tt.bytes, tt.want, got)
		}
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 0},
		{"2", 2},
		{"two", 0},
	}
	for _, tt := range tests {
		t.Setenv("TRANSCODE_WORKERS", tt.value)
		if got := getEnvInt("TRANSCODE_WORKERS", 0); got != tt.want {
			t.Errorf("TRANSCODE_WORKERS=%q: expected %d, got %d", tt.value, tt.want, got)
		}
	}
}

func TestGetEnvInt64(t *testing.T) {
	tests := []struct {
		value string
		want  int64
	}{
		{"", DefaultMaxUploadSize},
		{"1048576", 1 << 20},
		{"0", DefaultMaxUploadSize},
		{"-5", DefaultMaxUploadSize},
		{"1MB", DefaultMaxUploadSize},
	}
	for _, tt := range tests {
		t.Setenv("MAX_UPLOAD_SIZE", tt.value)
		if got := getEnvInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadSize); got != tt.want {
			t.Errorf("MAX_UPLOAD_SIZE=%q: expected %d, got %d", tt.value, tt.want, got)
		}
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 30 * time.Minute},
		{"45m", 45 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"60", 30 * time.Minute},
		{"-1s", 30 * time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("TRANSCODE_TIMEOUT", tt.value)
		if got := getEnvDuration("TRANSCODE_TIMEOUT", 30*time.Minute); got != tt.want {
			t.Errorf("TRANSCODE_TIMEOUT=%q: expected %v, got %v", tt.value, tt.want, got)
		}
	}
}

func TestParseDuration(t *testing.T) {
	if got := parseDuration("probe_timeout", "", 30*time.Second); got != 30*time.Second {
		t.Errorf("Expected default for empty value, got %v", got)
	}
	if got := parseDuration("probe_timeout", "10s", 30*time.Second); got != 10*time.Second {
		t.Errorf("Expected 10s, got %v", got)
	}
	if got := parseDuration("probe_timeout", "soon", 30*time.Second); got != 30*time.Second {
		t.Errorf("Expected default for unparsable value, got %v", got)
	}
}

func TestGetEnvList(t *testing.T) {
	defaults := []string{"ffprobe"}
	tests := []struct {
		value string
		want  []string
	}{
		{"", defaults},
		{"/opt/bin/ffprobe", []string{"/opt/bin/ffprobe"}},
		{" /a/ffprobe, ,ffprobe ,", []string{"/a/ffprobe", "ffprobe"}},
		{" , ,", defaults},
	}
	for _, tt := range tests {
		t.Setenv("FFPROBE_PATHS", tt.value)
		if got := getEnvList("FFPROBE_PATHS", defaults); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FFPROBE_PATHS=%q: expected %v, got %v", tt.value, tt.want, got)
		}
	}
}
