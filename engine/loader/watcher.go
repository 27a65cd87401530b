package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

// DefaultDebounce is how long the Watcher waits after the last change before reloading.
const DefaultDebounce = 100 * time.Millisecond

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu      sync.RWMutex
	current shader.SourceMap

	dir      string
	onReload func(shader.SourceMap)
	debounce time.Duration
	loader   Loader
	logger   *slog.Logger

	fsw       *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Watcher keeps a SourceMap in sync with a directory on disk. Changes below the directory
// are debounced, the tree is read again and the new SourceMap replaces the current one.
// A tree that fails to load is logged and the previous SourceMap stays current.
type Watcher interface {
	// Current returns the most recently loaded source map.
	//
	// Returns:
	//   - shader.SourceMap: the current source map
	Current() shader.SourceMap

	// Close stops watching and waits for the event loop to exit.
	//
	// Returns:
	//   - error: error from closing the underlying fsnotify watcher
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher loads dir, starts watching it and every directory below it, and calls
// onReload with each newly loaded SourceMap. onReload runs on the watcher's goroutine and
// may be nil.
//
// Parameters:
//   - dir: the directory to watch
//   - onReload: callback invoked after every successful reload
//   - options: a variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the initial load or the watch setup fails
func NewWatcher(dir string, onReload func(shader.SourceMap), options ...WatcherBuilderOption) (Watcher, error) {
	w := &watcher{
		dir:      dir,
		onReload: onReload,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}
	if w.loader == nil {
		w.loader = NewLoader(BackendTypeDir, WithLoaderLogger(w.logger))
	}

	sm, err := w.loader.Reload(dir)
	if err != nil {
		return nil, err
	}
	w.current = sm

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("loader: watch %s: %w", dir, err)
	}
	w.fsw = fsw
	if err := w.addTree(dir); err != nil {
		return nil, errors.Join(err, fsw.Close())
	}

	w.wg.Add(1)
	go w.watchLoop()
	return w, nil
}

func (w *watcher) Current() shader.SourceMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fsw.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

// addTree watches root and every directory below it. fsnotify watches are not recursive.
func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("loader: watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *watcher) watchLoop() {
	defer w.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("shader watcher error", slog.String("dir", w.dir), slog.Any("error", err))
		}
	}
}

// handle reports whether event changes the source tree. New directories are watched too.
func (w *watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("shader watcher error", slog.String("dir", event.Name), slog.Any("error", err))
			}
		}
	}
	w.logger.Debug("shader source changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
	return true
}

func (w *watcher) reload() {
	sm, err := w.loader.Reload(w.dir)
	if err != nil {
		w.logger.Error("shader reload failed, keeping previous sources", slog.String("dir", w.dir), slog.Any("error", err))
		return
	}

	w.mu.Lock()
	w.current = sm
	w.mu.Unlock()

	w.logger.Info("shader sources reloaded", slog.String("dir", w.dir), slog.Int("files", sm.Len()))
	if w.onReload != nil {
		w.onReload(sm)
	}
}
