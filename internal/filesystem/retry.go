package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"video-ingest/internal/logging"
)

// RetryConfig bounds how long an operation keeps retrying a stale handle.
type RetryConfig struct {
	Attempts   int // retries after the first call
	Backoff    time.Duration
	MaxBackoff time.Duration
	Volumes    *VolumeResolver
}

// DefaultRetryConfig returns the settings used for upload storage.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:   3,
		Backoff:    50 * time.Millisecond,
		MaxBackoff: 500 * time.Millisecond,
	}
}

func (c RetryConfig) volume(path string) string {
	if c.Volumes != nil {
		return c.Volumes.Resolve(path)
	}
	return currentResolver().Resolve(path)
}

// IsStale reports whether err carries ESTALE.
func IsStale(err error) bool {
	return errors.Is(err, syscall.ESTALE)
}

// retry runs fn until it succeeds, fails with anything other than a stale
// handle, or the configured attempts are used up.
func retry[T any](op, path string, cfg RetryConfig, fn func() (T, error)) (T, error) {
	obs := observe()
	volume := cfg.volume(path)
	start := time.Now()
	defer func() {
		obs.ObserveRetryDuration(op, volume, time.Since(start).Seconds())
	}()

	delay := cfg.Backoff
	for attempt := 0; ; attempt++ {
		v, err := fn()
		switch {
		case err == nil:
			if attempt > 0 {
				obs.ObserveRetrySuccess(op, volume)
				logging.Info("%s %s succeeded after %d stale handle retries", op, path, attempt)
			}
			return v, nil
		case !IsStale(err):
			return v, err
		}

		obs.ObserveStaleError(op, volume)
		if attempt >= cfg.Attempts {
			obs.ObserveRetryFailure(op, volume)
			logging.Warn("%s %s: stale file handle after %d retries", op, path, attempt)
			return v, err
		}
		obs.ObserveRetryAttempt(op, volume)
		logging.Debug("%s %s: stale file handle, retrying in %v", op, path, delay)
		time.Sleep(delay)
		if delay *= 2; delay > cfg.MaxBackoff {
			delay = cfg.MaxBackoff
		}
	}
}

func StatWithRetry(path string, cfg RetryConfig) (os.FileInfo, error) {
	return retry("stat", path, cfg, func() (os.FileInfo, error) { return os.Stat(path) })
}

func OpenWithRetry(path string, cfg RetryConfig) (*os.File, error) {
	return retry("open", path, cfg, func() (*os.File, error) { return os.Open(path) })
}

func ReadDirWithRetry(path string, cfg RetryConfig) ([]os.DirEntry, error) {
	return retry("readdir", path, cfg, func() ([]os.DirEntry, error) { return os.ReadDir(path) })
}

func RenameWithRetry(oldPath, newPath string, cfg RetryConfig) error {
	_, err := retry("rename", oldPath, cfg, func() (struct{}, error) {
		return struct{}{}, os.Rename(oldPath, newPath)
	})
	return err
}
