package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader entry point belongs to.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the stage.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// ParseShaderType maps a stage name ("vertex", "fragment", "compute") to its ShaderType.
//
// Parameters:
//   - name: the stage name
//
// Returns:
//   - ShaderType: the matching stage
//   - bool: false if the name is not a known stage
func ParseShaderType(name string) (ShaderType, bool) {
	switch name {
	case "vertex":
		return ShaderTypeVertex, true
	case "fragment":
		return ShaderTypeFragment, true
	case "compute":
		return ShaderTypeCompute, true
	default:
		return 0, false
	}
}

// visibility returns the wgpu stage flag for the shader type.
func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// Reflection is the compiled form of a processed shader together with its reflected interface.
type Reflection struct {
	// SPIRV is the generated SPIR-V binary.
	SPIRV []byte

	// EntryPoints lists the module's entry points in declaration order.
	EntryPoints []EntryPoint

	// Bindings lists every @group/@binding global, sorted by group then binding.
	Bindings []Binding
}

// EntryPoint is a reflected shader entry point.
type EntryPoint struct {
	Name      string
	Stage     ShaderType
	Workgroup [3]uint32
}

// Binding is a reflected resource binding.
type Binding struct {
	Group    uint32
	Binding  uint32
	Name     string
	Resource Resource
}

// ResourceKind classifies what a binding holds.
type ResourceKind int

const (
	ResourceUnknown ResourceKind = iota
	ResourceUniformBuffer
	ResourceStorageBuffer
	ResourceReadOnlyStorageBuffer
	ResourceSampler
	ResourceComparisonSampler
	ResourceTexture
	ResourceDepthTexture
	ResourceStorageTexture
)

// TextureDimension is the view dimension of a texture binding.
type TextureDimension int

const (
	TextureDimension2D TextureDimension = iota
	TextureDimension1D
	TextureDimension2DArray
	TextureDimension3D
	TextureDimensionCube
	TextureDimensionCubeArray
)

// SampleKind is the scalar kind sampled from a texture.
type SampleKind int

const (
	SampleKindFloat SampleKind = iota
	SampleKindSint
	SampleKindUint
)

// StorageAccess is the access mode of a storage texture.
type StorageAccess int

const (
	StorageAccessWrite StorageAccess = iota
	StorageAccessRead
	StorageAccessReadWrite
)

// Resource describes the type of a bound resource. Only the fields relevant to Kind are set.
type Resource struct {
	Kind         ResourceKind
	Dimension    TextureDimension
	Multisampled bool
	SampleKind   SampleKind
	Access       StorageAccess

	// TexelFormat is the WGSL texel format name of a storage texture, e.g. "rgba8unorm".
	TexelFormat string
}

// EntryPoint returns the first entry point of the given stage.
//
// Parameters:
//   - stage: the stage to look for
//
// Returns:
//   - EntryPoint: the entry point
//   - bool: false if the module has no entry point for stage
func (r *Reflection) EntryPoint(stage ShaderType) (EntryPoint, bool) {
	for _, ep := range r.EntryPoints {
		if ep.Stage == stage {
			return ep, true
		}
	}
	return EntryPoint{}, false
}

var wgpuViewDimensions = map[TextureDimension]wgpu.TextureViewDimension{
	TextureDimension1D:        wgpu.TextureViewDimension1D,
	TextureDimension2D:        wgpu.TextureViewDimension2D,
	TextureDimension2DArray:   wgpu.TextureViewDimension2DArray,
	TextureDimension3D:        wgpu.TextureViewDimension3D,
	TextureDimensionCube:      wgpu.TextureViewDimensionCube,
	TextureDimensionCubeArray: wgpu.TextureViewDimensionCubeArray,
}

var wgpuSampleTypes = map[SampleKind]wgpu.TextureSampleType{
	SampleKindFloat: wgpu.TextureSampleTypeFloat,
	SampleKindSint:  wgpu.TextureSampleTypeSint,
	SampleKindUint:  wgpu.TextureSampleTypeUint,
}

var wgpuStorageAccess = map[StorageAccess]wgpu.StorageTextureAccess{
	StorageAccessWrite:     wgpu.StorageTextureAccessWriteOnly,
	StorageAccessRead:      wgpu.StorageTextureAccessReadOnly,
	StorageAccessReadWrite: wgpu.StorageTextureAccessReadWrite,
}

// wgslTexelFormatMap maps WGSL texel format strings to their corresponding wgpu texture formats.
var wgslTexelFormatMap = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba8snorm":  wgpu.TextureFormatRGBA8Snorm,
	"rgba8uint":   wgpu.TextureFormatRGBA8Uint,
	"rgba8sint":   wgpu.TextureFormatRGBA8Sint,
	"rgba16uint":  wgpu.TextureFormatRGBA16Uint,
	"rgba16sint":  wgpu.TextureFormatRGBA16Sint,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"r32sint":     wgpu.TextureFormatR32Sint,
	"r32float":    wgpu.TextureFormatR32Float,
	"rg32uint":    wgpu.TextureFormatRG32Uint,
	"rg32sint":    wgpu.TextureFormatRG32Sint,
	"rg32float":   wgpu.TextureFormatRG32Float,
	"rgba32uint":  wgpu.TextureFormatRGBA32Uint,
	"rgba32sint":  wgpu.TextureFormatRGBA32Sint,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
}

// BindGroupLayouts converts reflected bindings into bind group layout descriptors keyed
// by group index. Entries keep the binding order of the input, which Reflection already
// sorts by binding index.
//
// Parameters:
//   - bindings: the reflected bindings
//   - stage: the stage whose visibility flag is set on every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
func BindGroupLayouts(bindings []Binding, stage ShaderType) map[int]wgpu.BindGroupLayoutDescriptor {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, b := range bindings {
		groups[int(b.Group)] = append(groups[int(b.Group)], layoutEntry(b, stage.visibility()))
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result
}

// layoutEntry creates a wgpu.BindGroupLayoutEntry for a single reflected binding.
func layoutEntry(b Binding, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    b.Binding,
		Visibility: visibility,
	}

	res := b.Resource
	switch res.Kind {
	case ResourceUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case ResourceStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case ResourceReadOnlyStorageBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case ResourceSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case ResourceComparisonSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case ResourceTexture:
		entry.Texture.SampleType = wgpuSampleTypes[res.SampleKind]
		entry.Texture.ViewDimension = wgpuViewDimensions[res.Dimension]
		entry.Texture.Multisampled = res.Multisampled
	case ResourceDepthTexture:
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = wgpuViewDimensions[res.Dimension]
		entry.Texture.Multisampled = res.Multisampled
	case ResourceStorageTexture:
		entry.StorageTexture.Access = wgpuStorageAccess[res.Access]
		entry.StorageTexture.ViewDimension = wgpuViewDimensions[res.Dimension]
		if format, ok := wgslTexelFormatMap[res.TexelFormat]; ok {
			entry.StorageTexture.Format = format
		}
	}
	return entry
}
