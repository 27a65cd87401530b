package shader

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceMapNormalizesKeys(t *testing.T) {
	sm, err := NewSourceMap(map[string]string{
		"a.wgsl":           "A",
		"/dir/./b.wgsl":    "B",
		"dir//sub/c.wgsl":  "C",
		"dir/../top.wgsl":  "T",
		"/Case/UPPER.wgsl": "U",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/Case/UPPER.wgsl", "/a.wgsl", "/dir/b.wgsl", "/dir/sub/c.wgsl", "/top.wgsl"}, sm.Paths())
	assert.Equal(t, 5, sm.Len())

	src, err := sm.Lookup("/dir/b.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "B", src)

	src, err = sm.Lookup("dir/sub/../b.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "B", src)
}

func TestNewSourceMapRejectsDuplicates(t *testing.T) {
	_, err := NewSourceMap(map[string]string{
		"a.wgsl":  "one",
		"/a.wgsl": "two",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicatePath)

	var dup *DuplicatePathError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "/a.wgsl", dup.Path)
}

func TestSourceMapLookupMissing(t *testing.T) {
	sm, err := NewSourceMap(map[string]string{"a.wgsl": "A"})
	require.NoError(t, err)

	_, err = sm.Lookup("/b.wgsl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)

	var nf *FileNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "/b.wgsl", nf.Path)

	_, err = sm.Lookup("/A.wgsl")
	assert.ErrorIs(t, err, ErrFileNotFound, "keys are case-sensitive")
}

func TestSourceMapIsACopy(t *testing.T) {
	entries := map[string]string{"a.wgsl": "A"}
	sm, err := NewSourceMap(entries)
	require.NoError(t, err)

	entries["a.wgsl"] = "changed"
	entries["b.wgsl"] = "B"

	src, err := sm.Lookup("a.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "A", src)
	assert.Equal(t, 1, sm.Len())
}

func TestNewSourceMapFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/common/camera.wgsl": {Data: []byte("struct Camera {}")},
		"shaders/lit.wgsl":           {Data: []byte("#include \"common/camera.wgsl\"")},
		"shaders/README.md":          {Data: []byte("docs")},
		"other/skip.wgsl":            {Data: []byte("skip")},
	}

	t.Run("whole tree", func(t *testing.T) {
		sm, err := NewSourceMapFromFS(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/other/skip.wgsl",
			"/shaders/README.md",
			"/shaders/common/camera.wgsl",
			"/shaders/lit.wgsl",
		}, sm.Paths())
	})

	t.Run("root and extension filter", func(t *testing.T) {
		sm, err := NewSourceMapFromFS(fsys, WithRoot("shaders/"), WithExtensions(".wgsl"))
		require.NoError(t, err)
		assert.Equal(t, []string{"/common/camera.wgsl", "/lit.wgsl"}, sm.Paths())

		src, err := sm.Lookup("/lit.wgsl")
		require.NoError(t, err)
		assert.Equal(t, "#include \"common/camera.wgsl\"", src, "contents are stored unprocessed")
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := NewSourceMapFromFS(fsys, WithRoot("nope"))
		require.Error(t, err)
	})
}
