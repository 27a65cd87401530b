package loader

import (
	"io/fs"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS is an option builder that sets the filesystem read by BackendTypeFS.
//
// Parameters:
//   - fsys: the filesystem, e.g. an embed.FS
//
// Returns:
//   - LoaderBuilderOption: a function that applies the filesystem option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.fsys = fsys
	}
}

// WithSourceMapOptions is an option builder that sets the options used for every source
// map the Loader reads, such as shader.WithExtensions.
//
// Parameters:
//   - options: the source map options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the source map options to a loader
func WithSourceMapOptions(options ...shader.SourceMapBuilderOption) LoaderBuilderOption {
	return func(l *loader) {
		l.sourceOptions = append(l.sourceOptions, options...)
	}
}

// WithLoaderLogger is an option builder that sets the Loader's logger. A nil logger is ignored.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLoaderLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
