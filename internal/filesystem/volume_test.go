package filesystem

import "testing"

func TestVolumeResolver(t *testing.T) {
	r := NewVolumeResolver(
		Volume{Name: "uploads", Path: "/srv/media"},
		Volume{Name: "database", Path: "/srv/media/index"},
	)
	tests := []struct {
		path string
		want string
	}{
		{"/srv/media/abc/original.mp4", "uploads"},
		{"/srv/media", "uploads"},
		{"/srv/media/index/media.db", "database"},
		{"/srv/mediator/file", unknownVolume},
		{"/tmp/other", unknownVolume},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.path); got != tt.want {
			t.Errorf("Resolve(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestNilVolumeResolver(t *testing.T) {
	var r *VolumeResolver
	if got := r.Resolve("/srv/media/x"); got != unknownVolume {
		t.Errorf("Expected %q, got %q", unknownVolume, got)
	}
}

func TestDefaultVolumeResolver(t *testing.T) {
	SetDefaultVolumeResolver(NewVolumeResolver(Volume{Name: "uploads", Path: "/srv/media"}))
	t.Cleanup(func() { SetDefaultVolumeResolver(nil) })

	if got := DefaultRetryConfig().volume("/srv/media/a"); got != "uploads" {
		t.Errorf("Expected uploads from default resolver, got %q", got)
	}
}
