// Package watcher reloads the config file when it changes on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called with the watched path after it settles. A returned
// error is logged; the watcher keeps running.
type ReloadFunc func(path string) error

// Watcher watches one file for changes
type Watcher struct {
	path     string
	onChange ReloadFunc
	debounce time.Duration
}

// New creates a new file watcher
func New(path string, onChange ReloadFunc) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until the context is cancelled, calling onChange once per
// burst of writes to the file
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory so files replaced by editors are still seen
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	log.Printf("Watching %s for changes", w.path)

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	reload := func() {
		log.Printf("Config changed: %s", w.path)
		if err := w.onChange(w.path); err != nil {
			log.Printf("Config reload failed, keeping previous machine: %v", err)
			return
		}
		log.Printf("Config reloaded from %s", w.path)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, reload)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
			return ctx.Err()
		}
	}
}
