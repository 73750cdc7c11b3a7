// Package media generates poster frames for uploaded videos.
//
// A poster is one frame extracted by FFmpeg (at one second, falling back to
// the first frame for very short clips), fitted into 320x180 and stored as
// poster.jpg next to the original. Posters are optional: a failure is
// reported to the caller but never affects the asset.
package media
