package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

const exampleManifest = `
shader_dir = "shaders"
workers    = 4
max_depth  = 8
extensions = [".wgsl"]

program "lit_vs" {
  stage     = "vertex"
  includes  = ["lit/vertex.wgsl"]
  defines   = { MAX_LIGHTS = 16, USE_SHADOWS = true, SCALE = 0.5 }
}

program "blur" {
  source    = "fn blur() { helper(); }\nfn helper() {}"
  obfuscate = ["helper"]
}
`

func TestParse(t *testing.T) {
	m, err := Parse(filepath.Join("project", "shaders.hcl"), []byte(exampleManifest))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("project", "shaders"), m.ShaderDir)
	assert.Equal(t, filepath.Join("project", DefaultOutputDir), m.OutputDir)
	assert.Equal(t, 4, m.Workers)
	assert.Equal(t, 8, m.MaxDepth)
	assert.Equal(t, []string{".wgsl"}, m.Extensions)
	assert.Len(t, m.SourceMapOptions(), 1)

	require.Len(t, m.Programs, 2)
	assert.Equal(t, "blur", m.Programs[0].Name, "programs are sorted by name")
	assert.Equal(t, "lit_vs", m.Programs[1].Name)

	vs := m.Program("lit_vs")
	require.NotNil(t, vs)
	stage, ok := vs.ShaderType()
	require.True(t, ok)
	assert.Equal(t, shader.ShaderTypeVertex, stage)
	assert.Equal(t, []string{"lit/vertex.wgsl"}, vs.Includes)

	defines, err := vs.DefineList()
	require.NoError(t, err)
	assert.Equal(t, []shader.Define{
		{Key: "MAX_LIGHTS", Value: "16"},
		{Key: "SCALE", Value: "0.5"},
		{Key: "USE_SHADOWS", Value: "true"},
	}, defines)

	_, ok = m.Program("blur").ShaderType()
	assert.False(t, ok)
	assert.Nil(t, m.Program("missing"))
}

func TestParseAbsoluteDirs(t *testing.T) {
	abs := t.TempDir()
	src := `
shader_dir = "` + filepath.ToSlash(filepath.Join(abs, "src")) + `"
output_dir = "` + filepath.ToSlash(filepath.Join(abs, "out")) + `"
program "p" { source = "x" }
`
	m, err := Parse(filepath.Join("elsewhere", "m.hcl"), []byte(src))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, "src"), m.ShaderDir)
	assert.Equal(t, filepath.Join(abs, "out"), m.OutputDir)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		invalid bool
		msg     string
	}{
		{
			name: "syntax error",
			src:  `shader_dir = "x"` + "\nprogram \"p\" {",
			msg:  "failed to parse",
		},
		{
			name: "missing shader_dir",
			src:  `program "p" { source = "x" }`,
			msg:  "failed to decode",
		},
		{
			name: "unknown attribute",
			src:  "shader_dir = \"x\"\nshaders = 1",
			msg:  "failed to decode",
		},
		{
			name:    "empty shader_dir",
			src:     `shader_dir = ""`,
			invalid: true,
			msg:     "shader_dir",
		},
		{
			name:    "duplicate program",
			src:     "shader_dir = \"x\"\nprogram \"p\" { source = \"a\" }\nprogram \"p\" { source = \"b\" }",
			invalid: true,
			msg:     "declared more than once",
		},
		{
			name:    "unknown stage",
			src:     "shader_dir = \"x\"\nprogram \"p\" {\n  stage = \"geometry\"\n  source = \"a\"\n}",
			invalid: true,
			msg:     "unknown stage",
		},
		{
			name:    "empty program",
			src:     "shader_dir = \"x\"\nprogram \"p\" {}",
			invalid: true,
			msg:     "neither includes nor source",
		},
		{
			name:    "defines list",
			src:     "shader_dir = \"x\"\nprogram \"p\" {\n  source = \"a\"\n  defines = [1, 2]\n}",
			invalid: true,
			msg:     "defines must be an object",
		},
		{
			name:    "nested define value",
			src:     "shader_dir = \"x\"\nprogram \"p\" {\n  source = \"a\"\n  defines = { A = [1] }\n}",
			invalid: true,
			msg:     `define "A"`,
		},
		{
			name:    "invalid include",
			src:     "shader_dir = \"x\"\nprogram \"p\" {\n  includes = [\"a\\\\b.wgsl\"]\n}",
			invalid: true,
			msg:     "invalid include path",
		},
		{
			name:    "negative workers",
			src:     "shader_dir = \"x\"\nworkers = -1",
			invalid: true,
			msg:     "workers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.hcl", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidManifest)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shaders.hcl")
	require.NoError(t, os.WriteFile(path, []byte(exampleManifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shaders"), m.ShaderDir)

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuilders(t *testing.T) {
	m, err := Parse("shaders.hcl", []byte(exampleManifest))
	require.NoError(t, err)

	sm, err := shader.NewSourceMap(map[string]string{
		"lit/vertex.wgsl": "#include \"common.wgsl\"\nconst lights = MAX_LIGHTS;\nconst shadows = USE_SHADOWS;",
		"lit/common.wgsl": "const scale = SCALE;",
	})
	require.NoError(t, err)

	builders, err := m.Builders()
	require.NoError(t, err)
	require.Len(t, builders, 2)
	assert.Equal(t, "lit_vs", builders["lit_vs"].Label())

	out, err := builders["lit_vs"].BuildSource(sm)
	require.NoError(t, err)
	assert.Equal(t, "const scale = 0.5;\nconst lights = 16;\nconst shadows = true;", out)

	blur, err := builders["blur"].BuildSource(sm)
	require.NoError(t, err)
	assert.NotContains(t, blur, "helper(")
	assert.Regexp(t, `^fn blur\(\) \{ [a-zA-Z]{16}\(\); \}\nfn [a-zA-Z]{16}\(\) \{\}$`, blur)
}

func TestBuildersAppliesMaxDepth(t *testing.T) {
	m, err := Parse("m.hcl", []byte("shader_dir = \"x\"\nmax_depth = 1\nprogram \"p\" { includes = [\"a.wgsl\"] }"))
	require.NoError(t, err)
	sm, err := shader.NewSourceMap(map[string]string{
		"a.wgsl": "#include \"b.wgsl\"",
		"b.wgsl": "#include \"c.wgsl\"",
		"c.wgsl": "c",
	})
	require.NoError(t, err)

	builders, err := m.Builders()
	require.NoError(t, err)
	_, err = builders["p"].BuildSource(sm)
	assert.ErrorIs(t, err, shader.ErrTooDeep)
}
