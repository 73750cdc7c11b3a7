package assets

import (
	"time"
)

// Metadata is the probed description of an original upload.
type Metadata struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// Tier is one target quality preset for a rendition.
type Tier struct {
	Name   string
	Width  int
	Height int
	// Bitrate caps the quality-targeted encode, in kbit/s.
	Bitrate int
}

// Tier names. OriginalName is not a tier but is accepted wherever a
// rendition name is resolved.
const (
	TierHigh     = "high"
	TierMedium   = "medium"
	TierLow      = "low"
	OriginalName = "original"
)

// Tiers are the fixed presets every asset is transcoded into.
var Tiers = []Tier{
	{Name: TierHigh, Width: 1920, Height: 1080, Bitrate: 5000},
	{Name: TierMedium, Width: 1280, Height: 720, Bitrate: 2500},
	{Name: TierLow, Width: 854, Height: 480, Bitrate: 1000},
}

// TierByName looks up a preset.
func TierByName(name string) (Tier, bool) {
	for _, t := range Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// RenditionState is the outcome of one tier.
type RenditionState string

const (
	RenditionPending   RenditionState = "pending"
	RenditionSucceeded RenditionState = "succeeded"
	RenditionFailed    RenditionState = "failed"
)

// Rendition is the state of one tier of an asset. Path is set only when the
// tier succeeded.
type Rendition struct {
	State RenditionState `json:"state"`
	Path  string         `json:"-"`
	Error string         `json:"error,omitempty"`
}

// Renditions maps tier name to its rendition.
type Renditions map[string]Rendition

// PendingRenditions returns a map with every tier pending.
func PendingRenditions() Renditions {
	r := make(Renditions, len(Tiers))
	for _, t := range Tiers {
		r[t.Name] = Rendition{State: RenditionPending}
	}
	return r
}

// Succeeded counts the tiers in the succeeded state.
func (r Renditions) Succeeded() int {
	n := 0
	for _, rd := range r {
		if rd.State == RenditionSucceeded {
			n++
		}
	}
	return n
}

// Asset is one uploaded video and its derived artifacts.
type Asset struct {
	ID                string
	OriginalName      string
	OriginalExtension string
	Metadata          *Metadata
	Renditions        Renditions
	State             State
	CreatedAt         time.Time
}

// Summary is the public view of an asset returned by upload and listing.
type Summary struct {
	ID         string     `json:"id"`
	UploadTime string     `json:"uploadTime,omitempty"`
	Metadata   *Metadata  `json:"metadata,omitempty"`
	Renditions Renditions `json:"renditions,omitempty"`
	State      State      `json:"state,omitempty"`
}

// UploadTimeLayout is the format of Summary.UploadTime.
const UploadTimeLayout = "2006-01-02 15:04:05"

// Summary returns the public view of a.
func (a *Asset) Summary() Summary {
	s := Summary{
		ID:         a.ID,
		Metadata:   a.Metadata,
		Renditions: a.Renditions,
		State:      a.State,
	}
	if !a.CreatedAt.IsZero() {
		s.UploadTime = a.CreatedAt.Format(UploadTimeLayout)
	}
	return s
}

// PosterFile is the name of the optional preview frame in an asset directory.
const PosterFile = "poster.jpg"

// FileName returns the on-disk name of a rendition or the original,
// e.g. FileName("high", "mp4") == "high.mp4".
func FileName(name, ext string) string {
	return name + "." + ext
}
