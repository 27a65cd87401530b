package shader

import "path"

// sourceMapConfig collects the settings applied by SourceMapBuilderOption values.
type sourceMapConfig struct {
	root       string
	extensions []string
}

// SourceMapBuilderOption is a functional option for NewSourceMapFromFS.
type SourceMapBuilderOption func(*sourceMapConfig)

// WithRoot walks only the given sub-directory of the filesystem. Keys are relative to it.
//
// Parameters:
//   - dir: a slash-separated directory inside the filesystem
//
// Returns:
//   - SourceMapBuilderOption: option function to apply
func WithRoot(dir string) SourceMapBuilderOption {
	return func(c *sourceMapConfig) {
		c.root = path.Clean(dir)
	}
}

// WithExtensions keeps only files whose extension (including the dot) is listed.
// Without this option every regular file is stored.
//
// Parameters:
//   - exts: extensions such as ".wgsl"
//
// Returns:
//   - SourceMapBuilderOption: option function to apply
func WithExtensions(exts ...string) SourceMapBuilderOption {
	return func(c *sourceMapConfig) {
		c.extensions = append(c.extensions, exts...)
	}
}
