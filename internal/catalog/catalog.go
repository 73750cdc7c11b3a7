package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"video-ingest/internal/assets"
	"video-ingest/internal/filesystem"
	"video-ingest/internal/logging"
	"video-ingest/internal/metrics"
)

const (
	stagingPrefix   = ".staging-"
	tombstonePrefix = ".deleted-"
	maxReserveTries = 5
	dirMode         = 0o755
	fileMode        = 0o644

	// DefaultPruneGrace is how long an uncommitted directory must sit
	// untouched before Prune treats it as abandoned while a server may be
	// running.
	DefaultPruneGrace = time.Hour
)

// Entry is the scanned state of one committed asset directory.
type Entry struct {
	ID        string
	Extension string
	// UploadTime is the modification time of the original.
	UploadTime time.Time
	// OriginalPath is the absolute path of original.<ext>.
	OriginalPath string
	// Renditions maps tier name to the path of each rendition present on disk.
	Renditions map[string]string
	HasPoster  bool
	// Bytes is the total size of the files in the directory.
	Bytes int64
}

// Reservation is a claimed but not yet committed asset directory.
type Reservation struct {
	ID          string
	Dir         string
	Extension   string
	StagingPath string
}

// OriginalPath is where Commit places the original.
func (r *Reservation) OriginalPath() string {
	return filepath.Join(r.Dir, assets.FileName(assets.OriginalName, r.Extension))
}

// Catalog manages asset directories under a single storage root.
type Catalog struct {
	root  string
	retry filesystem.RetryConfig
	log   *logging.Logger
	now   func() time.Time
}

// New creates the storage root if needed and returns a catalog over it.
func New(root string, log *logging.Logger) (*Catalog, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", abs, err)
	}

	return &Catalog{
		root:  abs,
		retry: filesystem.DefaultRetryConfig(),
		log:   log.With("component", "catalog"),
		now:   time.Now,
	}, nil
}

// Root returns the absolute storage root.
func (c *Catalog) Root() string {
	return c.root
}

// Dir returns the directory of id without checking that it exists.
func (c *Catalog) Dir(id string) string {
	return filepath.Join(c.root, id)
}

// Reserve claims a fresh directory for an upload named filename with the
// given extension. The id is the sanitized base name plus the current unix
// time; when that directory already exists a UUID fragment is appended.
func (c *Catalog) Reserve(filename, ext string) (res *Reservation, err error) {
	defer observe("reserve", time.Now(), &err)

	base := assets.SanitizeBaseName(filename)
	id := fmt.Sprintf("%s_%d", base, c.now().Unix())

	for attempt := 0; attempt < maxReserveTries; attempt++ {
		candidate := id
		if attempt > 0 {
			candidate = id + "_" + shortUUID()
		}

		dir := c.Dir(candidate)
		err = os.Mkdir(dir, dirMode)
		if err == nil {
			return &Reservation{ID: candidate, Dir: dir, Extension: ext}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("reserve asset directory: %w", err)
		}

		metrics.IDCollisionsTotal.Inc()
		c.log.Debug("Asset id %s already taken, retrying with suffix", candidate)
	}

	return nil, fmt.Errorf("reserve asset directory for %s: too many collisions", id)
}

// WriteStaging copies src into a hidden staging file inside the reservation
// and fsyncs it. It returns the number of bytes written.
func (c *Catalog) WriteStaging(res *Reservation, src io.Reader) (int64, error) {
	path := filepath.Join(res.Dir, stagingPrefix+shortUUID()+"."+res.Extension)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return 0, fmt.Errorf("create staging file: %w", err)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		_ = f.Close()
		return n, fmt.Errorf("write staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return n, fmt.Errorf("sync staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close staging file: %w", err)
	}

	res.StagingPath = path
	return n, nil
}

// Commit renames the staged upload to original.<ext>, making the asset
// visible to List.
func (c *Catalog) Commit(res *Reservation) (path string, err error) {
	defer observe("commit", time.Now(), &err)

	if res.StagingPath == "" {
		return "", fmt.Errorf("commit %s: nothing staged", res.ID)
	}

	path = res.OriginalPath()
	if err := filesystem.RenameWithRetry(res.StagingPath, path, c.retry); err != nil {
		return "", fmt.Errorf("commit %s: %w", res.ID, err)
	}
	syncDir(res.Dir)

	res.StagingPath = ""
	return path, nil
}

// Purge removes a reservation that will never be committed.
func (c *Catalog) Purge(res *Reservation) error {
	if err := os.RemoveAll(res.Dir); err != nil {
		return fmt.Errorf("purge %s: %w", res.ID, err)
	}
	return nil
}

// List returns every committed asset sorted by id.
func (c *Catalog) List() (entries []Entry, err error) {
	defer observe("list", time.Now(), &err)

	dirents, err := filesystem.ReadDirWithRetry(c.root, c.retry)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	entries = make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if !d.IsDir() || !assets.ValidID(d.Name()) {
			continue
		}

		e, ok, scanErr := c.scan(d.Name())
		if scanErr != nil {
			// The directory may have been deleted between ReadDir and scan.
			c.log.Debug("Skipping %s: %v", d.Name(), scanErr)
			continue
		}
		if ok {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

// Get returns the committed asset id.
func (c *Catalog) Get(id string) (e Entry, err error) {
	defer observe("get", time.Now(), &err)
	return c.get(id)
}

func (c *Catalog) get(id string) (Entry, error) {
	if !assets.ValidID(id) {
		return Entry{}, assets.NotFound("asset", id)
	}

	e, ok, err := c.scan(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, assets.NotFound("asset", id)
		}
		return Entry{}, err
	}
	if !ok {
		return Entry{}, assets.NotFound("asset", id)
	}
	return e, nil
}

// Delete removes the asset directory. The directory is renamed to a hidden
// tombstone first so that it disappears from List in one step.
func (c *Catalog) Delete(id string) (err error) {
	defer observe("delete", time.Now(), &err)

	if _, err := c.get(id); err != nil {
		return err
	}

	tombstone := c.Dir(tombstonePrefix + id + "-" + shortUUID())
	if err := filesystem.RenameWithRetry(c.Dir(id), tombstone, c.retry); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return assets.NotFound("asset", id)
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}

	if err := os.RemoveAll(tombstone); err != nil {
		// Already invisible; Prune finishes the job on next start.
		c.log.Warn("Failed to remove tombstone %s: %v", tombstone, err)
	}

	c.log.Info("Deleted asset %s", id)
	return nil
}

// ResolveRenditionPath returns the path of a tier file or of the original
// (name "original"). It fails with NotFoundError when the asset or file does
// not exist.
func (c *Catalog) ResolveRenditionPath(id, name string) (path string, err error) {
	defer observe("resolve", time.Now(), &err)

	e, err := c.get(id)
	if err != nil {
		return "", err
	}

	if name == assets.OriginalName {
		return e.OriginalPath, nil
	}
	if _, ok := assets.TierByName(name); !ok {
		return "", assets.NotFound("rendition", id+"/"+name)
	}

	p, ok := e.Renditions[name]
	if !ok {
		return "", assets.NotFound("rendition", id+"/"+name)
	}
	return p, nil
}

// ResolveFile maps a served file name such as "medium.mp4", "original.mov"
// or "poster.jpg" to its path.
func (c *Catalog) ResolveFile(id, file string) (string, error) {
	if file == assets.PosterFile {
		e, err := c.Get(id)
		if err != nil {
			return "", err
		}
		if !e.HasPoster {
			return "", assets.NotFound("poster", id)
		}
		return filepath.Join(c.Dir(id), assets.PosterFile), nil
	}

	name, ext, ok := strings.Cut(file, ".")
	if !ok || ext == "" {
		return "", assets.NotFound("file", id+"/"+file)
	}

	path, err := c.ResolveRenditionPath(id, name)
	if err != nil {
		return "", err
	}
	if filepath.Base(path) != file {
		return "", assets.NotFound("file", id+"/"+file)
	}
	return path, nil
}

// Prune removes tombstones and reservations that never committed an
// original. Directories modified within grace are left alone, since an
// upload may still be writing or probing them. A zero grace removes every
// leftover and is only safe before the server accepts uploads.
func (c *Catalog) Prune(grace time.Duration) (removed int, err error) {
	defer observe("prune", time.Now(), &err)

	dirents, err := os.ReadDir(c.root)
	if err != nil {
		return 0, fmt.Errorf("read storage root: %w", err)
	}

	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		name := d.Name()

		stale := strings.HasPrefix(name, tombstonePrefix)
		if !stale && assets.ValidID(name) {
			_, ok, scanErr := c.scan(name)
			stale = scanErr == nil && !ok
		}
		if !stale {
			continue
		}
		if grace > 0 && c.recentlyModified(c.Dir(name), time.Now().Add(-grace)) {
			c.log.Debug("Skipping recently active directory %s", name)
			continue
		}

		if err := os.RemoveAll(c.Dir(name)); err != nil {
			c.log.Warn("Failed to prune %s: %v", name, err)
			continue
		}
		c.log.Info("Pruned incomplete asset directory %s", name)
		removed++
	}

	return removed, nil
}

// recentlyModified reports whether dir or any direct entry changed after
// cutoff. Unreadable directories count as recent.
func (c *Catalog) recentlyModified(dir string, cutoff time.Time) bool {
	info, err := filesystem.StatWithRetry(dir, c.retry)
	if err != nil {
		return true
	}
	if info.ModTime().After(cutoff) {
		return true
	}
	dirents, err := filesystem.ReadDirWithRetry(dir, c.retry)
	if err != nil {
		return true
	}
	for _, d := range dirents {
		fi, err := d.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(cutoff) {
			return true
		}
	}
	return false
}

// GetStats implements metrics.StatsProvider.
func (c *Catalog) GetStats() metrics.Stats {
	stats := metrics.Stats{Renditions: make(map[string]int, len(assets.Tiers))}
	for _, t := range assets.Tiers {
		stats.Renditions[t.Name] = 0
	}

	entries, err := c.List()
	if err != nil {
		c.log.Warn("Failed to collect storage stats: %v", err)
		return stats
	}

	stats.Assets = len(entries)
	for _, e := range entries {
		stats.StorageBytes += e.Bytes
		for tier := range e.Renditions {
			stats.Renditions[tier]++
		}
	}
	return stats
}

// scan inspects one asset directory. ok is false when no original exists.
func (c *Catalog) scan(id string) (Entry, bool, error) {
	dir := c.Dir(id)
	files, err := filesystem.ReadDirWithRetry(dir, c.retry)
	if err != nil {
		return Entry{}, false, err
	}

	e := Entry{ID: id, Renditions: make(map[string]string)}
	present := make(map[string]bool, len(files))

	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		present[f.Name()] = true
		e.Bytes += info.Size()

		if e.OriginalPath == "" && strings.HasPrefix(f.Name(), assets.OriginalName) {
			e.OriginalPath = filepath.Join(dir, f.Name())
			e.Extension = assets.Extension(f.Name())
			e.UploadTime = info.ModTime()
		}
	}

	if e.OriginalPath == "" {
		return Entry{}, false, nil
	}

	for _, t := range assets.Tiers {
		name := assets.FileName(t.Name, e.Extension)
		if present[name] {
			e.Renditions[t.Name] = filepath.Join(dir, name)
		}
	}
	e.HasPoster = present[assets.PosterFile]

	return e, true, nil
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// syncDir flushes a directory entry change. Errors are ignored because some
// filesystems do not support fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func observe(op string, start time.Time, errp *error) {
	status := "success"
	if *errp != nil && !assets.IsNotFound(*errp) {
		status = "error"
	}
	metrics.CatalogOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.CatalogOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
