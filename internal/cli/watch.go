package cli

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of writes one commit produces.
const watchDebounce = 150 * time.Millisecond

// dbWatcher signals when a SQLite database file, or its WAL or journal,
// changes on disk. Bursts of writes collapse into one signal.
type dbWatcher struct {
	Changes <-chan struct{}

	path    string
	changes chan struct{}
	done    chan struct{}
	watcher *fsnotify.Watcher
}

func newDBWatcher(path string) (*dbWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan struct{}, 1)
	return &dbWatcher{
		Changes: ch,
		path:    filepath.Clean(path),
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start watches the database's directory; SQLite replaces and creates its
// side files, which a watch on the file alone would miss. A failed Start
// closes the watcher; do not call Stop after it.
func (w *dbWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.watcher.Close()
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *dbWatcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *dbWatcher) isDBFile(name string) bool {
	name = filepath.Clean(name)
	return name == w.path || strings.HasPrefix(name, w.path+"-")
}

func (w *dbWatcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(watchDebounce / 3)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isDBFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= watchDebounce {
				pending = time.Time{}
				select {
				case w.changes <- struct{}{}:
				default:
					// a signal is already queued
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
