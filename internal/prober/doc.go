// Package prober extracts dimensions and duration from media files with
// ffprobe.
//
// The ffprobe binary is resolved once at startup and passed to [New]; a
// Prober built with an empty path reports the tool as unavailable. Output is
// decoded into typed wire structs by [ParseJSON], which fails explicitly when
// no video stream or a required field is missing.
package prober
