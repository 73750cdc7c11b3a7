package assets

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantExt string
		wantErr bool
	}{
		{"mp4", "clip.mp4", "mp4", false},
		{"upper case", "CLIP.MOV", "mov", false},
		{"avi", "holiday.avi", "avi", false},
		{"wmv", "a.b.wmv", "wmv", false},
		{"empty", "", "", true},
		{"whitespace", "   ", "", true},
		{"no extension", "clip", "", true},
		{"trailing dot", "clip.", "", true},
		{"disallowed", "clip.mkv", "", true},
		{"image", "photo.jpg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateFilename(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.input)
				}
				if !IsValidation(err) {
					t.Errorf("Expected ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ext != tt.wantExt {
				t.Errorf("Expected ext %q, got %q", tt.wantExt, ext)
			}
		})
	}
}

func TestSanitizeBaseName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"My Holiday.mp4", "My_Holiday"},
		{"../../etc/passwd.mp4", "passwd"},
		{`C:\videos\clip.avi`, "clip"},
		{"résumé.mov", "rsum"},
		{"a.b.c.wmv", "a.b.c"},
		{"...hidden.mp4", "hidden"},
		{"漢字.mp4", "video"},
		{".mp4", "video"},
		{"", "video"},
		{"semi;colon&amp.mp4", "semicolonamp"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeBaseName(tt.input); got != tt.expected {
				t.Errorf("SanitizeBaseName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"clip_1700000000", true},
		{"", false},
		{".staging", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.valid {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestTiers(t *testing.T) {
	expected := map[string][3]int{
		TierHigh:   {1920, 1080, 5000},
		TierMedium: {1280, 720, 2500},
		TierLow:    {854, 480, 1000},
	}

	if len(Tiers) != len(expected) {
		t.Fatalf("Expected %d tiers, got %d", len(expected), len(Tiers))
	}

	for name, want := range expected {
		tier, ok := TierByName(name)
		if !ok {
			t.Fatalf("Tier %s not found", name)
		}
		if tier.Width != want[0] || tier.Height != want[1] || tier.Bitrate != want[2] {
			t.Errorf("Tier %s = %+v, want %v", name, tier, want)
		}
	}

	if _, ok := TierByName(OriginalName); ok {
		t.Error("original must not be a tier")
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from  State
		to    State
		valid bool
	}{
		{StateUploading, StateProbing, true},
		{StateProbing, StateTranscoding, true},
		{StateProbing, StateFailed, true},
		{StateTranscoding, StateReady, true},
		{StateTranscoding, StatePartiallyReady, true},
		{StateTranscoding, StateFailed, true},
		{StateUploading, StateTranscoding, false},
		{StateReady, StateFailed, false},
		{StateFailed, StateProbing, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			got, err := tt.from.To(tt.to)
			if tt.valid {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if got != tt.to {
					t.Errorf("Expected %s, got %s", tt.to, got)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected invalid transition error")
			}
			if got != tt.from {
				t.Errorf("Expected state to stay %s, got %s", tt.from, got)
			}
		})
	}

	for _, s := range []State{StateReady, StatePartiallyReady, StateFailed} {
		if !s.Terminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}
}

func TestSettle(t *testing.T) {
	all := Renditions{
		TierHigh:   {State: RenditionSucceeded},
		TierMedium: {State: RenditionSucceeded},
		TierLow:    {State: RenditionSucceeded},
	}
	if got := Settle(all); got != StateReady {
		t.Errorf("Expected ready, got %s", got)
	}

	some := Renditions{
		TierHigh:   {State: RenditionSucceeded},
		TierMedium: {State: RenditionFailed},
		TierLow:    {State: RenditionSucceeded},
	}
	if got := Settle(some); got != StatePartiallyReady {
		t.Errorf("Expected partially_ready, got %s", got)
	}

	none := Renditions{
		TierHigh:   {State: RenditionFailed},
		TierMedium: {State: RenditionFailed},
		TierLow:    {State: RenditionFailed},
	}
	if got := Settle(none); got != StatePartiallyReady {
		t.Errorf("Expected partially_ready when only the original remains, got %s", got)
	}
}

func TestPendingRenditions(t *testing.T) {
	r := PendingRenditions()
	if len(r) != len(Tiers) {
		t.Fatalf("Expected %d entries, got %d", len(Tiers), len(r))
	}
	for name, rd := range r {
		if rd.State != RenditionPending {
			t.Errorf("Tier %s: expected pending, got %s", name, rd.State)
		}
	}
	if r.Succeeded() != 0 {
		t.Errorf("Expected 0 succeeded, got %d", r.Succeeded())
	}
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("upload: %w", NotFound("asset", "x"))
	if !IsNotFound(wrapped) {
		t.Error("Expected wrapped NotFoundError to be detected")
	}
	if IsValidation(wrapped) {
		t.Error("NotFoundError must not classify as validation")
	}

	cause := errors.New("exit status 1")
	pe := &ProbeError{Path: "/tmp/x.mp4", Reason: "ffprobe failed", Err: cause}
	if !IsProbe(fmt.Errorf("ingest: %w", pe)) {
		t.Error("Expected wrapped ProbeError to be detected")
	}
	if !errors.Is(pe, cause) {
		t.Error("ProbeError should unwrap to its cause")
	}

	te := &TranscodeError{Tier: TierLow, Reason: "encoder failed", Detail: "Unknown encoder", Err: cause}
	if !errors.Is(te, cause) {
		t.Error("TranscodeError should unwrap to its cause")
	}
	if te.Error() != "transcode low: encoder failed (Unknown encoder): exit status 1" {
		t.Errorf("Unexpected message: %s", te.Error())
	}
}

func TestTranscodeReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"typed", &TranscodeError{Tier: TierHigh, Reason: "timed out", Detail: "/srv/uploads/a/.high.partial.mp4"}, "timed out"},
		{"wrapped", fmt.Errorf("tier: %w", &TranscodeError{Tier: TierLow, Reason: "ffmpeg unavailable"}), "ffmpeg unavailable"},
		{"untyped", errors.New("open /srv/uploads/a/original.mp4: permission denied"), "encoder failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TranscodeReason(tt.err); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local)
	a := &Asset{
		ID:         "clip_1709296245",
		Metadata:   &Metadata{Width: 640, Height: 360, DurationSeconds: 12.5},
		Renditions: PendingRenditions(),
		State:      StateTranscoding,
		CreatedAt:  created,
	}

	s := a.Summary()
	if s.ID != a.ID {
		t.Errorf("Expected id %s, got %s", a.ID, s.ID)
	}
	if s.UploadTime != "2024-03-01 12:30:45" {
		t.Errorf("Unexpected upload time %q", s.UploadTime)
	}
	if s.Metadata.Width != 640 {
		t.Errorf("Expected metadata to carry through")
	}

	empty := (&Asset{ID: "x"}).Summary()
	if empty.UploadTime != "" {
		t.Errorf("Expected empty upload time for zero CreatedAt, got %q", empty.UploadTime)
	}
}
