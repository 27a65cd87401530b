package shader

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// nagaCompiler is the implementation of the Compiler interface backed by the pure Go
// naga WGSL front end and SPIR-V back end.
type nagaCompiler struct {
	validate     bool
	debug        bool
	spirvVersion spirv.Version
	logger       *slog.Logger
}

// Compiler turns processed WGSL into SPIR-V and reflects the module's entry points and
// resource bindings. It is the offline counterpart of handing the text to a GPU device.
type Compiler interface {
	// Compile parses, lowers, optionally validates and generates SPIR-V for source.
	//
	// Parameters:
	//   - label: a name used in errors and logs
	//   - source: the processed WGSL source
	//
	// Returns:
	//   - *Reflection: the SPIR-V and reflected module interface
	//   - error: a parse, lowering, validation or generation error
	Compile(label, source string) (*Reflection, error)
}

var _ Compiler = &nagaCompiler{}

// NewCompiler creates a naga-backed Compiler with all specified options applied.
// Validation is enabled and SPIR-V 1.3 is targeted by default.
//
// Parameters:
//   - options: functional options such as WithValidation and WithSPIRVVersion
//
// Returns:
//   - Compiler: the compiler
func NewCompiler(options ...CompilerOption) Compiler {
	defaults := naga.DefaultOptions()
	c := &nagaCompiler{
		validate:     defaults.Validate,
		debug:        defaults.Debug,
		spirvVersion: defaults.SPIRVVersion,
		logger:       slog.Default(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *nagaCompiler) Compile(label, source string) (*Reflection, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %q: %w", label, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader: compile %q: lowering: %w", label, err)
	}

	if c.validate {
		issues, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("shader: compile %q: validation: %w", label, err)
		}
		if len(issues) > 0 {
			return nil, fmt.Errorf("shader: compile %q: validation failed: %w", label, issues[0])
		}
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: c.spirvVersion,
		Debug:   c.debug,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: compile %q: %w", label, err)
	}

	refl := reflectModule(module)
	refl.SPIRV = code
	c.logger.Debug("shader compiled",
		slog.String("label", label),
		slog.Int("entry_points", len(refl.EntryPoints)),
		slog.Int("bindings", len(refl.Bindings)),
		slog.Int("spirv_bytes", len(code)),
	)
	return refl, nil
}

// reflectModule extracts entry points and bound global variables from a lowered module.
func reflectModule(module *ir.Module) *Reflection {
	refl := &Reflection{}
	for _, ep := range module.EntryPoints {
		stage, ok := stageFromIR(ep.Stage)
		if !ok {
			continue
		}
		refl.EntryPoints = append(refl.EntryPoints, EntryPoint{
			Name:      ep.Name,
			Stage:     stage,
			Workgroup: ep.Workgroup,
		})
	}

	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		refl.Bindings = append(refl.Bindings, Binding{
			Group:    gv.Binding.Group,
			Binding:  gv.Binding.Binding,
			Name:     gv.Name,
			Resource: classifyGlobal(module, gv),
		})
	}
	slices.SortFunc(refl.Bindings, func(a, b Binding) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Binding) - int(b.Binding)
	})
	return refl
}

func stageFromIR(stage ir.ShaderStage) (ShaderType, bool) {
	switch stage {
	case ir.StageVertex:
		return ShaderTypeVertex, true
	case ir.StageFragment:
		return ShaderTypeFragment, true
	case ir.StageCompute:
		return ShaderTypeCompute, true
	default:
		return 0, false
	}
}

// classifyGlobal derives the resource kind of a bound global from its address space and type.
func classifyGlobal(module *ir.Module, gv ir.GlobalVariable) Resource {
	switch gv.Space {
	case ir.SpaceUniform:
		return Resource{Kind: ResourceUniformBuffer}
	case ir.SpaceStorage:
		if gv.Access == ir.StorageRead {
			return Resource{Kind: ResourceReadOnlyStorageBuffer}
		}
		return Resource{Kind: ResourceStorageBuffer}
	}

	if int(gv.Type) >= len(module.Types) {
		return Resource{Kind: ResourceUnknown}
	}
	switch inner := module.Types[gv.Type].Inner.(type) {
	case ir.SamplerType:
		if inner.Comparison {
			return Resource{Kind: ResourceComparisonSampler}
		}
		return Resource{Kind: ResourceSampler}
	case ir.ImageType:
		res := Resource{
			Dimension:    imageDimension(inner.Dim, inner.Arrayed),
			Multisampled: inner.Multisampled,
		}
		switch inner.Class {
		case ir.ImageClassDepth:
			res.Kind = ResourceDepthTexture
		case ir.ImageClassStorage:
			res.Kind = ResourceStorageTexture
			res.Access = storageTextureAccess(inner.StorageAccess)
			res.TexelFormat = nagaTexelFormats[inner.StorageFormat]
		default:
			res.Kind = ResourceTexture
			res.SampleKind = sampleKind(inner.SampledKind)
		}
		return res
	}
	return Resource{Kind: ResourceUnknown}
}

// nagaTexelFormats names the storage texel formats WGSL allows in texture_storage_* types.
var nagaTexelFormats = map[ir.StorageFormat]string{
	ir.StorageFormatRgba8Unorm:  "rgba8unorm",
	ir.StorageFormatRgba8Snorm:  "rgba8snorm",
	ir.StorageFormatRgba8Uint:   "rgba8uint",
	ir.StorageFormatRgba8Sint:   "rgba8sint",
	ir.StorageFormatRgba16Uint:  "rgba16uint",
	ir.StorageFormatRgba16Sint:  "rgba16sint",
	ir.StorageFormatRgba16Float: "rgba16float",
	ir.StorageFormatR32Uint:     "r32uint",
	ir.StorageFormatR32Sint:     "r32sint",
	ir.StorageFormatR32Float:    "r32float",
	ir.StorageFormatRg32Uint:    "rg32uint",
	ir.StorageFormatRg32Sint:    "rg32sint",
	ir.StorageFormatRg32Float:   "rg32float",
	ir.StorageFormatRgba32Uint:  "rgba32uint",
	ir.StorageFormatRgba32Sint:  "rgba32sint",
	ir.StorageFormatRgba32Float: "rgba32float",
	ir.StorageFormatBgra8Unorm:  "bgra8unorm",
}

func imageDimension(dim ir.ImageDimension, arrayed bool) TextureDimension {
	switch dim {
	case ir.Dim1D:
		return TextureDimension1D
	case ir.Dim3D:
		return TextureDimension3D
	case ir.DimCube:
		if arrayed {
			return TextureDimensionCubeArray
		}
		return TextureDimensionCube
	default:
		if arrayed {
			return TextureDimension2DArray
		}
		return TextureDimension2D
	}
}

func sampleKind(kind ir.ScalarKind) SampleKind {
	switch kind {
	case ir.ScalarSint:
		return SampleKindSint
	case ir.ScalarUint:
		return SampleKindUint
	default:
		return SampleKindFloat
	}
}

func storageTextureAccess(access ir.StorageAccess) StorageAccess {
	switch access {
	case ir.StorageAccessRead:
		return StorageAccessRead
	case ir.StorageAccessReadWrite, ir.StorageAccessAtomic:
		return StorageAccessReadWrite
	default:
		return StorageAccessWrite
	}
}
