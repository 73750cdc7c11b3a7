package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"video-ingest/internal/assets"
	"video-ingest/internal/logging"
	"video-ingest/internal/metrics"
)

// RemovedFunc is called with the id of an asset directory that disappeared.
type RemovedFunc func(ctx context.Context, id string)

// Watcher watches the top level of the upload root.
type Watcher struct {
	root      string
	onRemoved RemovedFunc
	fsw       *fsnotify.Watcher
	log       *logging.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts watching root. Call Run to process events and Close to stop.
func New(root string, onRemoved RemovedFunc, log *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	return &Watcher{
		root:      root,
		onRemoved: onRemoved,
		fsw:       fsw,
		log:       log.With("component", "watcher"),
	}, nil
}

// Run processes events in a background goroutine until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if filepath.Dir(ev.Name) != filepath.Clean(w.root) {
		return
	}

	id := filepath.Base(ev.Name)
	if !assets.ValidID(id) {
		return
	}
	// A rename event is also emitted for the source of a rename within the
	// root; only act when the id is really gone.
	if _, err := os.Stat(ev.Name); !errors.Is(err, os.ErrNotExist) {
		return
	}

	metrics.WatcherEventsTotal.WithLabelValues(eventType(ev)).Inc()
	w.log.Info("Asset directory %s removed from storage", id)
	w.onRemoved(ctx, id)
}

func eventType(ev fsnotify.Event) string {
	if ev.Has(fsnotify.Rename) {
		return "rename"
	}
	return "remove"
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
