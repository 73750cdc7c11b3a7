// Package mediatypes maps served asset files to HTTP content types.
//
// It is dependency-free so handlers and the CLI can import it without
// cycles.
//
//	mediatypes.ContentType("high.wmv")   // "video/x-ms-wmv"
//	mediatypes.ContentType("poster.jpg") // "image/jpeg"
package mediatypes
