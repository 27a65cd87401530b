package shader

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
)

// sourceMap is the implementation of the SourceMap interface.
type sourceMap struct {
	entries map[string]string
	paths   []string
}

// SourceMap is an immutable virtual filesystem of shader fragments. Keys are canonical
// absolute paths (rooted at "/", forward slashes, case-sensitive) and values are the
// literal file contents. A SourceMap is read-only once built and may be shared between
// concurrent builds without synchronization.
type SourceMap interface {
	// Lookup returns the source text stored at path. The path is normalized before lookup.
	//
	// Parameters:
	//   - path: the shader path, relative paths are treated as rooted at "/"
	//
	// Returns:
	//   - string: the literal source text
	//   - error: a *FileNotFoundError if no entry exists
	Lookup(path string) (string, error)

	// Paths returns every canonical key in ascending order.
	//
	// Returns:
	//   - []string: the sorted canonical paths
	Paths() []string

	// Len returns the number of entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int
}

var _ SourceMap = &sourceMap{}

// NewSourceMap builds a SourceMap from in-memory entries. Every key is normalized with
// common.RootedPath, two keys that normalize onto the same canonical path are rejected.
// The entries are copied, later changes to the input map do not affect the result.
//
// Parameters:
//   - entries: shader source text keyed by path
//
// Returns:
//   - SourceMap: the immutable source map
//   - error: a *DuplicatePathError if two keys collide
func NewSourceMap(entries map[string]string) (SourceMap, error) {
	sm := &sourceMap{entries: make(map[string]string, len(entries))}
	origins := make(map[string]string, len(entries))

	// sorted so the reported collision is stable
	for _, raw := range common.SortedKeys(entries) {
		key := common.RootedPath(raw)
		if first, ok := origins[key]; ok {
			return nil, &DuplicatePathError{Path: key, First: first, Other: raw}
		}
		origins[key] = raw
		sm.entries[key] = entries[raw]
	}
	sm.paths = common.SortedKeys(sm.entries)
	return sm, nil
}

// NewSourceMapFromFS walks a directory tree and stores every regular file under the key
// "/" + its path relative to the walk root. File contents are stored as-is, nothing is
// pre-processed at this stage.
//
// Parameters:
//   - fsys: the filesystem to walk, e.g. os.DirFS or an embed.FS
//   - options: functional options such as WithRoot and WithExtensions
//
// Returns:
//   - SourceMap: the immutable source map
//   - error: an error if walking or reading fails
func NewSourceMapFromFS(fsys fs.FS, options ...SourceMapBuilderOption) (SourceMap, error) {
	cfg := &sourceMapConfig{root: "."}
	for _, option := range options {
		option(cfg)
	}

	entries := make(map[string]string)
	err := fs.WalkDir(fsys, cfg.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !cfg.keep(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %q: %w", p, err)
		}
		rel := p
		if cfg.root != "." {
			rel = strings.TrimPrefix(strings.TrimPrefix(p, cfg.root), "/")
		}
		entries[rel] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("shader: walk source tree %q: %w", cfg.root, err)
	}
	return NewSourceMap(entries)
}

func (s *sourceMap) Lookup(p string) (string, error) {
	key := common.RootedPath(p)
	src, ok := s.entries[key]
	if !ok {
		return "", &FileNotFoundError{Path: key}
	}
	return src, nil
}

func (s *sourceMap) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

func (s *sourceMap) Len() int {
	return len(s.entries)
}

// keep reports whether a walked file passes the extension filter.
func (c *sourceMapConfig) keep(p string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	ext := path.Ext(p)
	for _, e := range c.extensions {
		if e == ext {
			return true
		}
	}
	return false
}
