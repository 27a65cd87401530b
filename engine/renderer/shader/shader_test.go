package shader

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompiler struct {
	refl   *Reflection
	err    error
	source string
}

func (c *fakeCompiler) Compile(label, source string) (*Reflection, error) {
	c.source = source
	if c.err != nil {
		return nil, c.err
	}
	return c.refl, nil
}

func TestNewShader(t *testing.T) {
	sm := mustSourceMap(t, map[string]string{
		"lit.wgsl": "#define LIGHTS 4\nconst n = LIGHTS;",
	})
	compiler := &fakeCompiler{refl: &Reflection{
		SPIRV: []byte{0x03, 0x02, 0x23, 0x07},
		EntryPoints: []EntryPoint{
			{Name: "vs_main", Stage: ShaderTypeVertex},
			{Name: "fs_main", Stage: ShaderTypeFragment},
		},
		Bindings: []Binding{
			{Group: 0, Binding: 0, Name: "camera", Resource: Resource{Kind: ResourceUniformBuffer}},
			{Group: 1, Binding: 0, Name: "albedo", Resource: Resource{Kind: ResourceTexture}},
			{Group: 1, Binding: 1, Name: "albedo_sampler", Resource: Resource{Kind: ResourceSampler}},
		},
	}}

	s, err := NewShader("lit", ShaderTypeFragment, NewBuilder().IncludePath("lit.wgsl"), sm, WithCompiler(compiler))
	require.NoError(t, err)

	assert.Equal(t, "lit", s.Key())
	assert.Equal(t, "\nconst n = 4;", s.Source())
	assert.Equal(t, s.Source(), compiler.source)
	assert.Equal(t, ShaderTypeFragment, s.ShaderType())
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Equal(t, [3]uint32{}, s.WorkgroupSize())
	assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07}, s.SPIRV())
	assert.Len(t, s.Bindings(), 3)

	require.NotNil(t, s.Module())
	assert.Equal(t, "lit", s.Module().Label)
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)

	assert.Equal(t, "albedo_sampler", s.BindGroupVarName(1, 1))
	assert.Equal(t, "", s.BindGroupVarName(2, 0))
	assert.Equal(t, "", s.BindGroupVarName(0, 7))

	binding, ok := s.BindGroupFromVarName(1, "albedo")
	assert.True(t, ok)
	assert.Equal(t, 0, binding)
	binding, ok = s.BindGroupFromVarName(0, "albedo")
	assert.False(t, ok)
	assert.Equal(t, -1, binding)
	_, ok = s.BindGroupFromVarName(5, "camera")
	assert.False(t, ok)

	layouts := s.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 2)
	require.Len(t, layouts[1].Entries, 2)
	assert.Equal(t, wgpu.ShaderStageFragment, layouts[1].Entries[0].Visibility)
}

func TestNewShaderComputeWorkgroup(t *testing.T) {
	compiler := &fakeCompiler{refl: &Reflection{
		EntryPoints: []EntryPoint{{Name: "main", Stage: ShaderTypeCompute, Workgroup: [3]uint32{8, 8, 1}}},
	}}
	s, err := NewShader("cs", ShaderTypeCompute, NewBuilder().IncludeSource("x"), mustSourceMap(t, nil), WithCompiler(compiler))
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{8, 8, 1}, s.WorkgroupSize())
	assert.Empty(t, s.BindGroupLayoutDescriptors())
}

func TestNewShaderErrors(t *testing.T) {
	sm := mustSourceMap(t, nil)

	t.Run("missing entry point", func(t *testing.T) {
		compiler := &fakeCompiler{refl: &Reflection{
			EntryPoints: []EntryPoint{{Name: "vs_main", Stage: ShaderTypeVertex}},
		}}
		_, err := NewShader("lit", ShaderTypeCompute, NewBuilder().IncludeSource("x"), sm, WithCompiler(compiler))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no compute entry point")
	})

	t.Run("build error", func(t *testing.T) {
		compiler := &fakeCompiler{}
		_, err := NewShader("lit", ShaderTypeVertex, NewBuilder().IncludePath("missing.wgsl"), sm, WithCompiler(compiler))
		require.ErrorIs(t, err, ErrFileNotFound)
		assert.Empty(t, compiler.source, "nothing is compiled after a failed build")
	})

	t.Run("compile error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewShader("lit", ShaderTypeVertex, NewBuilder().IncludeSource("x"), sm, WithCompiler(&fakeCompiler{err: boom}))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil builder", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = NewShader("lit", ShaderTypeVertex, nil, sm)
		})
	})
}

func TestNewShaderWithNaga(t *testing.T) {
	sm := mustSourceMap(t, map[string]string{"compute.wgsl": computeSource})
	s, err := NewShader("compute", ShaderTypeCompute, NewBuilder().IncludePath("compute.wgsl"), sm,
		WithCompiler(NewCompiler(WithValidation(false))))
	require.NoError(t, err)

	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{64, 2, 1}, s.WorkgroupSize())
	assert.Equal(t, "out", s.BindGroupVarName(0, 0))
	requireSPIRV(t, s.SPIRV())

	entry := s.BindGroupLayoutDescriptors()[0].Entries[0]
	assert.Equal(t, wgpu.BufferBindingTypeStorage, entry.Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageCompute, entry.Visibility)
}
