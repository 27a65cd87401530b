package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShaderType(t *testing.T) {
	for _, st := range []ShaderType{ShaderTypeVertex, ShaderTypeFragment, ShaderTypeCompute} {
		got, ok := ParseShaderType(st.String())
		require.True(t, ok, st.String())
		assert.Equal(t, st, got)
	}
	_, ok := ParseShaderType("geometry")
	assert.False(t, ok)
}

func TestBindGroupLayouts(t *testing.T) {
	bindings := []Binding{
		{Group: 0, Binding: 0, Name: "globals", Resource: Resource{Kind: ResourceUniformBuffer}},
		{Group: 0, Binding: 1, Name: "particles", Resource: Resource{Kind: ResourceReadOnlyStorageBuffer}},
		{Group: 1, Binding: 0, Name: "shadow", Resource: Resource{Kind: ResourceDepthTexture, Dimension: TextureDimension2DArray}},
		{Group: 1, Binding: 1, Name: "shadow_sampler", Resource: Resource{Kind: ResourceComparisonSampler}},
		{Group: 2, Binding: 3, Name: "out", Resource: Resource{
			Kind:        ResourceStorageTexture,
			Dimension:   TextureDimension2D,
			Access:      StorageAccessWrite,
			TexelFormat: "rgba16float",
		}},
		{Group: 2, Binding: 4, Name: "volume", Resource: Resource{
			Kind:       ResourceTexture,
			Dimension:  TextureDimension3D,
			SampleKind: SampleKindUint,
		}},
	}

	layouts := BindGroupLayouts(bindings, ShaderTypeCompute)
	require.Len(t, layouts, 3)

	g0 := layouts[0].Entries
	require.Len(t, g0, 2)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g0[0].Buffer.Type)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, g0[1].Buffer.Type)
	assert.Equal(t, uint32(1), g0[1].Binding)
	assert.Equal(t, wgpu.ShaderStageCompute, g0[0].Visibility)

	g1 := layouts[1].Entries
	require.Len(t, g1, 2)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, g1[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, g1[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, g1[1].Sampler.Type)

	g2 := layouts[2].Entries
	require.Len(t, g2, 2)
	assert.Equal(t, uint32(3), g2[0].Binding)
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, g2[0].StorageTexture.Access)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, g2[0].StorageTexture.Format)
	assert.Equal(t, wgpu.TextureViewDimension2D, g2[0].StorageTexture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeUint, g2[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension3D, g2[1].Texture.ViewDimension)
}

func TestBindGroupLayoutsEmpty(t *testing.T) {
	assert.Empty(t, BindGroupLayouts(nil, ShaderTypeVertex))
}
