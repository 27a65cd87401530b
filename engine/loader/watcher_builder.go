package loader

import (
	"log/slog"
	"time"
)

// WatcherBuilderOption is a functional option for configuring a Watcher via NewWatcher.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long the Watcher waits after the last change before reloading.
// Values <= 0 keep DefaultDebounce.
//
// Parameters:
//   - d: the debounce interval
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the Watcher's logger. A nil logger is ignored.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - WatcherBuilderOption: a function that applies the logger option to a watcher
func WithLogger(logger *slog.Logger) WatcherBuilderOption {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSourceLoader sets the Loader used to read the watched directory, so reloads also
// refresh that Loader's cache. It must use BackendTypeDir.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - WatcherBuilderOption: a function that applies the loader option to a watcher
func WithSourceLoader(l Loader) WatcherBuilderOption {
	return func(w *watcher) {
		w.loader = l
	}
}
