package manifest

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

// Program is one `program "name" { ... }` block: the fragments and defines of a single
// shader build.
type Program struct {
	Name      string    `hcl:"name,label"`
	Stage     string    `hcl:"stage,optional"`
	Includes  []string  `hcl:"includes,optional"`
	Source    string    `hcl:"source,optional"`
	Defines   cty.Value `hcl:"defines,optional"`
	Obfuscate []string  `hcl:"obfuscate,optional"`
}

// ShaderType returns the program's stage.
//
// Returns:
//   - shader.ShaderType: the stage
//   - bool: false if the program has no stage, in which case it is only pre-processed
func (p *Program) ShaderType() (shader.ShaderType, bool) {
	if p.Stage == "" {
		return 0, false
	}
	return shader.ParseShaderType(p.Stage)
}

// DefineList converts the defines attribute into explicit defines ordered by key.
// Numbers and bools are converted to their HCL string form.
//
// Returns:
//   - []shader.Define: the defines
//   - error: an error if defines is not an object or map of primitive values
func (p *Program) DefineList() ([]shader.Define, error) {
	if p.Defines.IsNull() {
		return nil, nil
	}
	ty := p.Defines.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("program %q: defines must be an object, got %s", p.Name, ty.FriendlyName())
	}
	if !p.Defines.IsWhollyKnown() {
		return nil, fmt.Errorf("program %q: defines must be known values", p.Name)
	}

	values := make(map[string]string, p.Defines.LengthInt())
	for it := p.Defines.ElementIterator(); it.Next(); {
		k, v := it.Element()
		key := k.AsString()
		if key == "" {
			return nil, fmt.Errorf("program %q: define keys must not be empty", p.Name)
		}
		if v.IsNull() {
			return nil, fmt.Errorf("program %q: define %q is null", p.Name, key)
		}
		str, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, fmt.Errorf("program %q: define %q: %w", p.Name, key, err)
		}
		values[key] = str.AsString()
	}

	defines := make([]shader.Define, 0, len(values))
	for _, key := range common.SortedKeys(values) {
		defines = append(defines, shader.Define{Key: key, Value: values[key]})
	}
	return defines, nil
}

// Builder creates the builder for this program: includes in order, then the inline
// source, then the defines, then one obfuscated rename per name in obfuscate.
//
// Parameters:
//   - options: builder options, the program name is applied as label first
//
// Returns:
//   - shader.Builder: the configured builder
//   - error: an error if the defines can not be converted
func (p *Program) Builder(options ...shader.BuilderOption) (shader.Builder, error) {
	defines, err := p.DefineList()
	if err != nil {
		return nil, err
	}

	b := shader.NewBuilder(append([]shader.BuilderOption{shader.WithLabel(p.Name)}, options...)...)
	for _, inc := range p.Includes {
		b.IncludePath(inc)
	}
	if p.Source != "" {
		b.IncludeSource(p.Source)
	}
	for _, d := range defines {
		b.Define(d.Key, d.Value)
	}
	for _, name := range p.Obfuscate {
		b.ObfuscateFn(name)
	}
	return b, nil
}

func (p *Program) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: program name must not be empty", ErrInvalidManifest)
	}
	if p.Stage != "" {
		if _, ok := shader.ParseShaderType(p.Stage); !ok {
			return fmt.Errorf("%w: program %q: unknown stage %q", ErrInvalidManifest, p.Name, p.Stage)
		}
	}
	if len(p.Includes) == 0 && p.Source == "" {
		return fmt.Errorf("%w: program %q has neither includes nor source", ErrInvalidManifest, p.Name)
	}
	for _, inc := range p.Includes {
		if !common.ValidShaderPath(inc) {
			return fmt.Errorf("%w: program %q: invalid include path %q", ErrInvalidManifest, p.Name, inc)
		}
	}
	for _, name := range p.Obfuscate {
		if name == "" {
			return fmt.Errorf("%w: program %q: obfuscate names must not be empty", ErrInvalidManifest, p.Name)
		}
	}
	if _, err := p.DefineList(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return nil
}
