package mediatypes

import "strings"

// ContentTypes maps the extensions served from the upload directory to
// their MIME types. mime.TypeByExtension depends on the host's mime.types
// and often lacks the legacy containers (wmv, avi), so the mapping is fixed.
var ContentTypes = map[string]string{
	"mp4": "video/mp4",
	"mov": "video/quicktime",
	"avi": "video/x-msvideo",
	"wmv": "video/x-ms-wmv",
	"jpg": "image/jpeg",
}

// DefaultContentType is used for unknown extensions.
const DefaultContentType = "application/octet-stream"

// ContentType returns the MIME type for a file name or bare extension.
func ContentType(name string) string {
	ext := strings.ToLower(name)
	if idx := strings.LastIndex(ext, "."); idx >= 0 {
		ext = ext[idx+1:]
	}
	if ct, ok := ContentTypes[ext]; ok {
		return ct
	}
	return DefaultContentType
}

// IsVideo reports whether name has a served video extension.
func IsVideo(name string) bool {
	return strings.HasPrefix(ContentType(name), "video/")
}
