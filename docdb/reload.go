// Copyright © 2024 The ELPS authors

package docdb

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay between the last change to a watched file
// and its reload.
const DefaultDebounce = 200 * time.Millisecond

// Reloadable is a Store backed by a JSON file that can be re-read while in
// use.
type Reloadable struct {
	path string

	mu    sync.RWMutex
	store MemoryStore

	// OnReload, when set, is called after each reload attempt.
	OnReload func(err error)
}

var _ Store = (*Reloadable)(nil)

// NewReloadable loads the JSON file at path.
func NewReloadable(path string) (*Reloadable, error) {
	r := &Reloadable{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the watched file.
func (r *Reloadable) Path() string {
	return r.path
}

// Reload re-reads the file.  On error the previous entries are kept.
func (r *Reloadable) Reload() error {
	store, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.store = store
	r.mu.Unlock()
	log.Infof("loaded %d documentation entries from %s", len(store), r.path)
	return nil
}

// Lookup implements Store.
func (r *Reloadable) Lookup(symbol string) (*Entry, error) {
	r.mu.RLock()
	store := r.store
	r.mu.RUnlock()
	return store.Lookup(symbol)
}

// Symbols returns the symbols of the current entries in sorted order.
func (r *Reloadable) Symbols() []string {
	r.mu.RLock()
	store := r.store
	r.mu.RUnlock()
	return store.Symbols()
}

// Watch reloads the file whenever it changes until ctx is done.  The
// containing directory is watched so that files replaced by rename are
// picked up.  Watch returns once the watcher is running.
func (r *Reloadable) Watch(ctx context.Context, debounce time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	if err := fsw.Add(filepath.Dir(r.path)); err != nil {
		fsw.Close() //nolint:errcheck
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	go r.run(ctx, fsw, debounce)
	return nil
}

func (r *Reloadable) run(ctx context.Context, fsw *fsnotify.Watcher, debounce time.Duration) {
	defer fsw.Close() //nolint:errcheck
	target := filepath.Clean(r.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				err := r.Reload()
				if err != nil {
					log.Warningf("reload %s: %v", r.path, err)
				}
				if r.OnReload != nil {
					r.OnReload(err)
				}
			})
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}
