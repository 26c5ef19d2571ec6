// Package watch reports changes to the CSV files of a data directory.
package watch

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/viability/internal/source"
	"github.com/huangsam/viability/schema"
)

// Debounce is how long a file must stay quiet before its change is emitted.
const Debounce = 100 * time.Millisecond

// Change is one settled change to a dataset file.
type Change struct {
	Dimension schema.Dimension
	File      string
	Removed   bool
}

// Watcher monitors <dir>/<dimension>/*.csv using fsnotify.
type Watcher struct {
	Dir     string
	Changes <-chan Change // Read-only external channel

	changes  chan Change
	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the given data directory.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		watcher: fw,
		logger:  logger,
	}, nil
}

// Start watches the data directory and every existing dimension directory.
// Dimension directories created later are picked up as they appear.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	for _, dim := range schema.AllDimensions {
		path := filepath.Join(w.Dir, string(dim))
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return err
			}
		}
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. Changes that were not
// read yet are discarded. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if w.isDimensionDir(event) {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("Cannot watch dimension directory", "path", event.Name, "error", err)
				}
				continue
			}
			if _, ok := w.dimensionOf(event.Name); !ok || !source.IsCSVFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) < Debounce {
					continue
				}
				if !w.emit(file) {
					return
				}
				delete(pending, file)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watch error", "error", err)
		}
	}
}

// isDimensionDir reports whether the event created a dimension directory.
func (w *Watcher) isDimensionDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) || filepath.Dir(event.Name) != filepath.Clean(w.Dir) {
		return false
	}
	if _, ok := schema.ValidDimensions[schema.Dimension(filepath.Base(event.Name))]; !ok {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// dimensionOf maps <dir>/<dimension>/<file> to its dimension.
func (w *Watcher) dimensionOf(file string) (schema.Dimension, bool) {
	parent := filepath.Dir(file)
	if filepath.Dir(parent) != filepath.Clean(w.Dir) {
		return "", false
	}
	dim := schema.Dimension(filepath.Base(parent))
	_, ok := schema.ValidDimensions[dim]
	return dim, ok
}

// emit sends a change unless the watcher is stopping, and reports whether it did.
func (w *Watcher) emit(file string) bool {
	dim, _ := w.dimensionOf(file)
	_, err := os.Stat(file)
	change := Change{
		Dimension: dim,
		File:      file,
		Removed:   errors.Is(err, os.ErrNotExist),
	}
	select {
	case w.changes <- change:
		return true
	case <-w.stop:
		return false
	}
}
