package loader

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadSourceMap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lit.wgsl"), "#include \"common/camera.wgsl\"\n")
	writeFile(t, filepath.Join(dir, "common", "camera.wgsl"), "struct Camera {}\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	sm, err := LoadSourceMap(dir, shader.WithExtensions(".wgsl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/common/camera.wgsl", "/lit.wgsl"}, sm.Paths())

	out, err := shader.NewBuilder().IncludePath("lit.wgsl").BuildSource(sm)
	require.NoError(t, err)
	assert.Equal(t, "struct Camera {}\n\n", out)
}

func TestLoadSourceMapErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSourceMap(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(dir, "file.wgsl")
	writeFile(t, file, "x")
	_, err = LoadSourceMap(file)
	assert.ErrorContains(t, err, "not a directory")
}

func TestDirLoaderCachesByRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wgsl"), "A")

	l := NewLoader(BackendTypeDir)
	assert.Nil(t, l.Get(dir))

	first, err := l.Load(dir)
	require.NoError(t, err)
	assert.Same(t, first, l.Get(dir))

	writeFile(t, filepath.Join(dir, "b.wgsl"), "B")
	cached, err := l.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len(), "Load serves the cache")

	fresh, err := l.Reload(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Len())
	assert.Equal(t, 2, l.Get(dir).Len())
	assert.Len(t, l.SourceMaps(), 1)
}

func TestReloadFailureKeepsCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wgsl"), "A")

	l := NewLoader(BackendTypeDir)
	sm, err := l.Load(dir)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))
	_, err = l.Reload(dir)
	require.Error(t, err)
	assert.Same(t, sm, l.Get(dir))
}

func TestFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/lit.wgsl":     {Data: []byte("lit")},
		"shaders/unlit.wgsl":   {Data: []byte("unlit")},
		"shaders/readme.md":    {Data: []byte("docs")},
		"other/elsewhere.wgsl": {Data: []byte("x")},
	}
	l := NewLoader(BackendTypeFS, WithFS(fsys), WithSourceMapOptions(shader.WithExtensions(".wgsl")))

	sm, err := l.Load("shaders")
	require.NoError(t, err)
	assert.Equal(t, []string{"/lit.wgsl", "/unlit.wgsl"}, sm.Paths())

	all, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Len())

	_, err = l.Load("missing")
	assert.Error(t, err)
}

func TestNewLoaderPanics(t *testing.T) {
	assert.Panics(t, func() { NewLoader(BackendTypeFS) })
	assert.Panics(t, func() { NewLoader(LoaderBackendType(42)) })
}
