package shader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultMaxDepth is the include nesting limit used when WithMaxDepth is not given.
const DefaultMaxDepth = 64

// builder is the implementation of the Builder interface.
type builder struct {
	label    string
	maxDepth int
	logger   *slog.Logger

	// includes is insertion-ordered, included holds the identities of its source and path refs.
	includes []Ref
	included map[string]struct{}
	defines  *defineSet

	built bool
}

// Builder assembles shader source from an ordered, de-duplicated set of included
// fragments and an ordered set of #define substitutions. The mutating methods return the
// builder so calls can be chained.
//
// A Builder is single use: BuildSource, Descriptor and Build consume it, and any further
// build call returns ErrAlreadyBuilt.
type Builder interface {
	// Include appends a fragment reference. Re-including a structurally equal reference is a no-op.
	//
	// Parameters:
	//   - ref: the fragment to include
	//
	// Returns:
	//   - Builder: the receiver, for chaining
	Include(ref Ref) Builder

	// IncludePath appends a path reference into the SourceMap.
	//
	// Parameters:
	//   - p: the shader path, normalized with common.RootedPath
	//
	// Returns:
	//   - Builder: the receiver, for chaining
	IncludePath(p string) Builder

	// IncludeSource appends inline shader text.
	//
	// Parameters:
	//   - text: the literal shader source
	//
	// Returns:
	//   - Builder: the receiver, for chaining
	IncludeSource(text string) Builder

	// IncludeBuilder appends a nested builder, resolved as a single unit.
	//
	// Parameters:
	//   - b: the nested builder
	//
	// Returns:
	//   - Builder: the receiver, for chaining
	IncludeBuilder(b Builder) Builder

	// Define registers an explicit substitution of key with value. Explicit defines win
	// over #define directives found in the source; defining the same key again replaces
	// the value but keeps the original position. Panics if key is empty.
	//
	// Parameters:
	//   - key: the literal text to replace
	//   - value: the replacement text
	//
	// Returns:
	//   - Builder: the receiver, for chaining
	Define(key, value string) Builder

	// ObfuscateFn renames every call site "name(" in the built output to a random
	// 16-letter identifier by registering a define on this builder. The rewrite is
	// textual, any identifier ending in name is rewritten too.
	//
	// Parameters:
	//   - name: the function name to obfuscate
	//
	// Returns:
	//   - string: the generated identifier
	ObfuscateFn(name string) string

	// Includes returns a copy of the include directives in insertion order.
	Includes() []Ref

	// Defines returns a copy of the define directives in insertion order. After a build
	// this also holds the directives discovered in the processed source.
	Defines() []Define

	// Label returns the label given with WithLabel.
	Label() string

	// BuildSource resolves every include against sm, strips and applies #define
	// directives and returns the final text. Consumes the builder.
	//
	// Parameters:
	//   - sm: the source map to resolve paths against
	//
	// Returns:
	//   - string: the processed shader source
	//   - error: a FileNotFoundError, InvalidIncludePathError, ErrTooDeep or ErrAlreadyBuilt
	BuildSource(sm SourceMap) (string, error)

	// Descriptor builds the source and wraps it in a WGSL shader module descriptor
	// labeled with the builder's label. Consumes the builder.
	//
	// Parameters:
	//   - sm: the source map to resolve paths against
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor holding the processed WGSL
	//   - error: any error returned by BuildSource
	Descriptor(sm SourceMap) (*wgpu.ShaderModuleDescriptor, error)

	// Build builds the source and hands it to device as a shader module. Consumes the builder.
	//
	// Parameters:
	//   - sm: the source map to resolve paths against
	//   - device: the device that compiles the module, usually a *wgpu.Device
	//
	// Returns:
	//   - *wgpu.ShaderModule: the compiled module
	//   - error: a build error or the device's error
	Build(sm SourceMap, device ModuleCreator) (*wgpu.ShaderModule, error)
}

// ModuleCreator compiles WGSL descriptors into shader modules. *wgpu.Device satisfies it.
type ModuleCreator interface {
	CreateShaderModule(descriptor *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)
}

var _ Builder = &builder{}

// NewBuilder creates an empty Builder with all specified options applied.
//
// Parameters:
//   - options: functional options such as WithMaxDepth, WithLogger and WithLabel
//
// Returns:
//   - Builder: a new, empty builder
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
		included: make(map[string]struct{}),
		defines:  newDefineSet(),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *builder) Include(ref Ref) Builder {
	if ref.kind == RefBuilder && ref.builder.reaches(b) {
		panic("shader: a builder can not include itself, directly or through nested builders")
	}
	if b.contains(ref) {
		return b
	}
	if ref.kind != RefBuilder {
		b.included[ref.key()] = struct{}{}
	}
	b.includes = append(b.includes, ref)
	return b
}

// contains reports whether ref is already included. Nested builders stay mutable after
// being included, so their identities are compared as they are now, and by pointer.
func (b *builder) contains(ref Ref) bool {
	if ref.kind != RefBuilder {
		_, ok := b.included[ref.key()]
		return ok
	}
	key := ref.key()
	for _, inc := range b.includes {
		if inc.kind == RefBuilder && (inc.builder == ref.builder || inc.key() == key) {
			return true
		}
	}
	return false
}

func (b *builder) IncludePath(p string) Builder {
	return b.Include(Path(p))
}

func (b *builder) IncludeSource(text string) Builder {
	return b.Include(Source(text))
}

func (b *builder) IncludeBuilder(nested Builder) Builder {
	return b.Include(Sub(nested))
}

func (b *builder) Define(key, value string) Builder {
	if key == "" {
		panic("shader: Define requires a non-empty key")
	}
	b.defines.set(key, value)
	return b
}

func (b *builder) ObfuscateFn(name string) string {
	obf := randomIdentifier()
	b.Define(name+"(", obf+"(")
	return obf
}

func (b *builder) Includes() []Ref {
	out := make([]Ref, len(b.includes))
	copy(out, b.includes)
	return out
}

func (b *builder) Defines() []Define {
	return b.defines.list()
}

func (b *builder) Label() string {
	return b.label
}

func (b *builder) BuildSource(sm SourceMap) (string, error) {
	if b.built {
		return "", ErrAlreadyBuilt
	}
	b.built = true

	src, err := b.process(sm, 0, b.defines)
	if err != nil {
		return "", err
	}
	b.logger.Debug("shader source built",
		slog.String("label", b.label),
		slog.Int("includes", len(b.includes)),
		slog.Int("defines", b.defines.len()),
		slog.Int("bytes", len(src)),
	)
	return src, nil
}

func (b *builder) Descriptor(sm SourceMap) (*wgpu.ShaderModuleDescriptor, error) {
	src, err := b.BuildSource(sm)
	if err != nil {
		return nil, err
	}
	return &wgpu.ShaderModuleDescriptor{
		Label: b.label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: src,
		},
	}, nil
}

func (b *builder) Build(sm SourceMap, device ModuleCreator) (*wgpu.ShaderModule, error) {
	desc, err := b.Descriptor(sm)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("shader: create module %q: %w", b.label, err)
	}
	return module, nil
}

// reaches reports whether target is b or is nested anywhere below it. Builder graphs are
// kept acyclic so structural identities stay finite.
func (b *builder) reaches(target *builder) bool {
	if b == target {
		return true
	}
	for _, ref := range b.includes {
		if ref.kind == RefBuilder && ref.builder.reaches(target) {
			return true
		}
	}
	return false
}

// process runs the include pass over every directive with a fresh blacklist, then the
// define pass over the concatenated output. Discovered defines are merged into defines.
func (b *builder) process(sm SourceMap, depth int, defines *defineSet) (string, error) {
	r := &resolver{
		sm:        sm,
		blacklist: make(map[string]struct{}),
		maxDepth:  b.maxDepth,
		logger:    b.logger,
	}

	var sb strings.Builder
	for _, ref := range b.includes {
		text, err := r.resolve(ref, depth)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}

	out, discovered := extractDefines(sb.String())
	for _, d := range discovered {
		defines.setIfAbsent(d.Key, d.Value)
	}
	return applyDefines(out, defines.substitutionOrder()), nil
}
