package shader

import (
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
// It holds the processed source, its compiled form and the reflected data pipelines need.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 EntryPoint
	bindings                   []Binding
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	spirv                      []byte
	module                     *wgpu.ShaderModuleDescriptor

	compiler Compiler
	logger   *slog.Logger
}

// Shader is a processed and compiled WGSL shader. It exposes the shader's unique key,
// final source, entry point, resource bindings and bind group layout descriptors needed
// for pipeline creation and resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source, with includes expanded and defines applied.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader was built for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// WorkgroupSize returns the workgroup size dimensions for compute shaders and
	// [0, 0, 0] for other stages.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Bindings returns every reflected @group/@binding resource, sorted by group then binding.
	//
	// Returns:
	//   - []Binding: the reflected bindings
	Bindings() []Binding

	// BindGroupLayoutDescriptors retrieves the layout descriptors derived from the bindings,
	// keyed by group index, with this shader's stage as visibility.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found, false otherwise
	BindGroupFromVarName(group int, varName string) (int, bool)

	// SPIRV returns the SPIR-V generated by the compiler.
	//
	// Returns:
	//   - []byte: the SPIR-V binary
	SPIRV() []byte

	// Module returns the WGSL shader module descriptor to hand to a GPU device.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader builds b against sm, compiles the result and reflects the entry point for
// shaderType together with every resource binding. The builder is consumed.
//
// Parameters:
//   - key: a unique identifier for the shader, also used as the module label
//   - shaderType: the stage whose entry point is selected
//   - b: the builder assembling the source
//   - sm: the source map the builder resolves against
//   - options: functional options such as WithCompiler
//
// Returns:
//   - Shader: the compiled shader
//   - error: a build or compile error, or a missing entry point for shaderType
func NewShader(key string, shaderType ShaderType, b Builder, sm SourceMap, options ...ShaderBuilderOption) (Shader, error) {
	if b == nil {
		panic(fmt.Sprintf("shader: %s requires a non-nil Builder", key))
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(s)
	}
	if s.compiler == nil {
		s.compiler = NewCompiler(WithCompilerLogger(s.logger))
	}

	src, err := b.BuildSource(sm)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", key, err)
	}
	if err := s.parseSource(src); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint.Name
}

func (s *shader) WorkgroupSize() [3]uint32 {
	if s.shaderType != ShaderTypeCompute {
		return [3]uint32{}
	}
	return s.entryPoint.Workgroup
}

func (s *shader) Bindings() []Binding {
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) SPIRV() []byte {
	return s.spirv
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

// parseSource stores the processed source, builds the module descriptor, compiles the
// source and fills entry point, bindings and layout descriptors from the reflection.
func (s *shader) parseSource(src string) error {
	s.source = src
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	refl, err := s.compiler.Compile(s.key, s.source)
	if err != nil {
		return err
	}
	ep, ok := refl.EntryPoint(s.shaderType)
	if !ok {
		return fmt.Errorf("shader: %s: no %s entry point", s.key, s.shaderType)
	}
	s.entryPoint = ep
	s.spirv = refl.SPIRV
	s.bindings = refl.Bindings
	s.bindGroupLayoutDescriptors = BindGroupLayouts(refl.Bindings, s.shaderType)

	s.bindingVarNames = make(map[int]map[int]string)
	for _, b := range refl.Bindings {
		group := int(b.Group)
		if s.bindingVarNames[group] == nil {
			s.bindingVarNames[group] = make(map[int]string)
		}
		s.bindingVarNames[group][int(b.Binding)] = b.Name
	}

	s.logger.Debug("shader ready",
		slog.String("key", s.key),
		slog.String("stage", s.shaderType.String()),
		slog.String("entry_point", ep.Name),
		slog.Int("bindings", len(s.bindings)),
	)
	return nil
}
