package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

// LoaderBackendType identifies where a Loader reads shader source trees from.
type LoaderBackendType int

const (
	// BackendTypeDir reads source trees from directories on disk.
	BackendTypeDir LoaderBackendType = iota

	// BackendTypeFS reads source trees from an fs.FS given with WithFS, e.g. an embed.FS.
	BackendTypeFS
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	cache map[string]shader.SourceMap

	fsys          fs.FS
	sourceOptions []shader.SourceMapBuilderOption
	logger        *slog.Logger

	backend loaderBackend
}

// Loader reads shader source trees into SourceMaps and caches them by root.
// It is safe for concurrent use.
type Loader interface {
	// Load reads the source tree at root and caches the result.
	// If the tree is already cached, the cached SourceMap is returned.
	//
	// Parameters:
	//   - root: the directory of the source tree, relative to the backend
	//
	// Returns:
	//   - shader.SourceMap: the loaded source map
	//   - error: error if reading fails or two files normalize to the same key
	Load(root string) (shader.SourceMap, error)

	// Reload reads the source tree at root again and replaces the cached entry.
	// On failure the previous entry is kept.
	//
	// Parameters:
	//   - root: the directory of the source tree, relative to the backend
	//
	// Returns:
	//   - shader.SourceMap: the freshly loaded source map
	//   - error: error if reading fails
	Reload(root string) (shader.SourceMap, error)

	// Get retrieves a cached source map by root. Returns nil if not found.
	//
	// Parameters:
	//   - root: the cache key to look up
	//
	// Returns:
	//   - shader.SourceMap: the cached source map or nil
	Get(root string) shader.SourceMap

	// SourceMaps returns a copy of the cache.
	//
	// Returns:
	//   - map[string]shader.SourceMap: all cached source maps keyed by root
	SourceMaps() map[string]shader.SourceMap
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
// Panics if BackendTypeFS is selected without WithFS.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeDir)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache:  make(map[string]shader.SourceMap),
		logger: slog.Default(),
	}
	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeDir:
		l.backend = &dirLoaderBackend{}
	case BackendTypeFS:
		if l.fsys == nil {
			panic("loader: BackendTypeFS requires WithFS")
		}
		l.backend = &fsLoaderBackend{fsys: l.fsys}
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}
	return l
}

// LoadSourceMap reads every regular file below dir on disk into a SourceMap, keyed by
// its path relative to dir.
//
// Parameters:
//   - dir: the directory to read
//   - options: source map options such as shader.WithExtensions
//
// Returns:
//   - shader.SourceMap: the loaded source map
//   - error: error if reading fails
func LoadSourceMap(dir string, options ...shader.SourceMapBuilderOption) (shader.SourceMap, error) {
	return (&dirLoaderBackend{}).Read(dir, options...)
}

func (l *loader) Load(root string) (shader.SourceMap, error) {
	l.mu.RLock()
	sm, ok := l.cache[root]
	l.mu.RUnlock()
	if ok {
		return sm, nil
	}
	return l.Reload(root)
}

func (l *loader) Reload(root string) (shader.SourceMap, error) {
	sm, err := l.backend.Read(root, l.sourceOptions...)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", common.Coalesce(root, "."), err)
	}

	l.mu.Lock()
	l.cache[root] = sm
	l.mu.Unlock()

	l.logger.Info("source tree loaded", slog.String("root", root), slog.Int("files", sm.Len()))
	return sm, nil
}

func (l *loader) Get(root string) shader.SourceMap {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[root]
}

func (l *loader) SourceMaps() map[string]shader.SourceMap {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]shader.SourceMap, len(l.cache))
	for k, v := range l.cache {
		out[k] = v
	}
	return out
}

// dirLoaderBackend reads source trees from disk.
type dirLoaderBackend struct{}

func (b *dirLoaderBackend) Read(root string, options ...shader.SourceMapBuilderOption) (shader.SourceMap, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", root)
	}
	return shader.NewSourceMapFromFS(os.DirFS(root), options...)
}

// fsLoaderBackend reads source trees from a fixed fs.FS.
type fsLoaderBackend struct {
	fsys fs.FS
}

func (b *fsLoaderBackend) Read(root string, options ...shader.SourceMapBuilderOption) (shader.SourceMap, error) {
	// the root given to Load wins over any WithRoot in the loader's source options
	opts := append(append([]shader.SourceMapBuilderOption{}, options...), shader.WithRoot(common.Coalesce(root, ".")))
	return shader.NewSourceMapFromFS(b.fsys, opts...)
}
