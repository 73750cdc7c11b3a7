package filesystem

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const unknownVolume = "unknown"

// Volume is a storage root that retry metrics are labelled with.
type Volume struct {
	Name string
	Path string
}

// VolumeResolver labels paths with the volume that contains them.
type VolumeResolver struct {
	roots []Volume // slash-terminated absolute paths, longest first
}

// NewVolumeResolver builds a resolver over the given storage roots.
// Nested roots resolve to the innermost one.
func NewVolumeResolver(volumes ...Volume) *VolumeResolver {
	roots := make([]Volume, 0, len(volumes))
	for _, v := range volumes {
		roots = append(roots, Volume{Name: v.Name, Path: rootPrefix(v.Path)})
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return len(roots[i].Path) > len(roots[j].Path)
	})
	return &VolumeResolver{roots: roots}
}

func rootPrefix(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

// Resolve returns the name of the volume holding path, or "unknown".
func (r *VolumeResolver) Resolve(path string) string {
	if r == nil {
		return unknownVolume
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	for _, root := range r.roots {
		if strings.HasPrefix(path+"/", root.Path) {
			return root.Name
		}
	}
	return unknownVolume
}

var (
	resolverMu      sync.RWMutex
	defaultResolver *VolumeResolver
)

// SetDefaultVolumeResolver installs the resolver used when a RetryConfig
// carries none.
func SetDefaultVolumeResolver(r *VolumeResolver) {
	resolverMu.Lock()
	defaultResolver = r
	resolverMu.Unlock()
}

func currentResolver() *VolumeResolver {
	resolverMu.RLock()
	defer resolverMu.RUnlock()
	return defaultResolver
}
