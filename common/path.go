package common

import (
	"path"
	"strings"
)

// Root is the canonical root of every shader source path.
const Root = "/"

// RootedPath converts p into a canonical absolute Unix-style path rooted at "/".
// Backslashes are not translated: shader source paths are always forward-slash paths.
// "." segments, redundant separators and ".." segments are collapsed; ".." above the
// root stays at the root.
//
// Parameters:
//   - p: a relative or absolute path
//
// Returns:
//   - string: the cleaned absolute path
func RootedPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// JoinRooted resolves p against the directory base. An absolute p ignores base.
//
// Parameters:
//   - base: the directory the path is relative to
//   - p: the path to resolve
//
// Returns:
//   - string: the cleaned absolute path
func JoinRooted(base, p string) string {
	if strings.HasPrefix(p, "/") {
		return RootedPath(p)
	}
	return RootedPath(path.Join(base, p))
}

// ParentDir returns the directory portion of a rooted path, or Root when there is none.
//
// Parameters:
//   - p: a rooted path
//
// Returns:
//   - string: the parent directory
func ParentDir(p string) string {
	dir := path.Dir(RootedPath(p))
	if dir == "." || dir == "" {
		return Root
	}
	return dir
}

// ValidShaderPath reports whether a raw include path can be normalized into a Unix path.
// NUL bytes, backslashes, double quotes and Windows volume prefixes are rejected.
//
// Parameters:
//   - p: the raw path as written in source
//
// Returns:
//   - bool: true if p is usable as a shader path
func ValidShaderPath(p string) bool {
	if p == "" || strings.ContainsAny(p, "\x00\\\"") {
		return false
	}
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		return false
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
