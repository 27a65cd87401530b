package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is matched by every FileNotFoundError.
	ErrFileNotFound = errors.New("shader: file not found")

	// ErrInvalidIncludePath is matched by every InvalidIncludePathError.
	ErrInvalidIncludePath = errors.New("shader: invalid include path")

	// ErrDuplicatePath is matched by every DuplicatePathError.
	ErrDuplicatePath = errors.New("shader: duplicate source path")

	// ErrTooDeep is returned when include nesting exceeds the builder's maximum depth.
	ErrTooDeep = errors.New("shader: include nesting too deep")

	// ErrAlreadyBuilt is returned when a Builder is built a second time.
	ErrAlreadyBuilt = errors.New("shader: builder already built")

	// ErrBatchClosed is returned when a BatchBuilder is used after Close.
	ErrBatchClosed = errors.New("shader: batch builder closed")
)

// FileNotFoundError reports a path that has no entry in the SourceMap.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("shader: file not found: %q", e.Path)
}

// Is makes errors.Is(err, ErrFileNotFound) match.
func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// InvalidIncludePathError reports a quoted #include path that cannot be normalized.
type InvalidIncludePathError struct {
	Raw string
}

func (e *InvalidIncludePathError) Error() string {
	return fmt.Sprintf("shader: invalid include path %q", e.Raw)
}

// Is makes errors.Is(err, ErrInvalidIncludePath) match.
func (e *InvalidIncludePathError) Is(target error) bool {
	return target == ErrInvalidIncludePath
}

// DuplicatePathError reports two source entries that normalize to the same canonical key.
type DuplicatePathError struct {
	Path  string
	First string
	Other string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("shader: %q and %q both normalize to %q", e.First, e.Other, e.Path)
}

// Is makes errors.Is(err, ErrDuplicatePath) match.
func (e *DuplicatePathError) Is(target error) bool {
	return target == ErrDuplicatePath
}
