package loader

import "github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"

// loaderBackend defines the generic interface for reading shader source trees.
// Concrete implementations (e.g., dirLoaderBackend) handle where the files live.
type loaderBackend interface {
	// Read builds a SourceMap from the tree rooted at root.
	//
	// Parameters:
	//   - root: the root of the tree to read
	//   - options: source map options applied to the walk
	//
	// Returns:
	//   - shader.SourceMap: the source map
	//   - error: error if reading fails
	Read(root string, options ...shader.SourceMapBuilderOption) (shader.SourceMap, error)
}

var (
	_ loaderBackend = &dirLoaderBackend{}
	_ loaderBackend = &fsLoaderBackend{}
)
