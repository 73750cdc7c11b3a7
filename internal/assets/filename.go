package assets

import (
	"path/filepath"
	"strings"
	"unicode"
)

// AllowedExtensions is the upload allow-list, lower case without the dot.
var AllowedExtensions = map[string]bool{
	"mp4": true,
	"avi": true,
	"mov": true,
	"wmv": true,
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// ValidateFilename checks a client-supplied upload name and returns its
// normalized extension.
func ValidateFilename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", Validationf("no file selected")
	}
	ext := Extension(name)
	if !AllowedExtensions[ext] {
		return "", Validationf("unsupported file type: %q", ext)
	}
	return ext, nil
}

// SanitizeBaseName reduces an upload name to a filesystem-safe base name
// without its extension. Only ASCII letters, digits, '_', '-' and '.' survive;
// whitespace becomes '_' and leading/trailing dots and underscores are trimmed.
func SanitizeBaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}

	base := strings.Trim(b.String(), "._")
	if base == "" {
		return "video"
	}
	return base
}

// ValidID reports whether id is usable as an asset directory name.
func ValidID(id string) bool {
	if id == "" || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00") && id != ".."
}
