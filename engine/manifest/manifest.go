// Package manifest decodes the HCL project file that names the shader source tree and
// the programs built from it.
//
// A manifest looks like:
//
//	shader_dir = "shaders"
//	output_dir = "build"
//	workers    = 4
//	max_depth  = 32
//	extensions = [".wgsl"]
//
//	program "lit_vs" {
//	  stage     = "vertex"
//	  includes  = ["lit/vertex.wgsl"]
//	  defines   = { MAX_LIGHTS = 16, USE_SHADOWS = true }
//	  obfuscate = ["helper"]
//	}
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
	"github.com/Carmen-Shannon/oxy-wgsl/engine/renderer/shader"
)

// DefaultOutputDir is used when a manifest has no output_dir.
const DefaultOutputDir = "build"

// ErrInvalidManifest is matched by every validation failure returned from Load and Parse.
var ErrInvalidManifest = errors.New("manifest: invalid")

// Manifest is the decoded project file. ShaderDir and OutputDir are resolved against the
// manifest's own directory once loaded.
type Manifest struct {
	ShaderDir  string     `hcl:"shader_dir"`
	OutputDir  string     `hcl:"output_dir,optional"`
	Workers    int        `hcl:"workers,optional"`
	MaxDepth   int        `hcl:"max_depth,optional"`
	Extensions []string   `hcl:"extensions,optional"`
	Programs   []*Program `hcl:"program,block"`
}

// Load reads and decodes the manifest at path.
//
// Parameters:
//   - path: the manifest file
//
// Returns:
//   - *Manifest: the validated manifest with directories resolved
//   - error: a parse, decode or validation error
func Load(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes manifest source. filename is used in diagnostics and its directory is the
// base for relative shader_dir and output_dir.
//
// Parameters:
//   - filename: the name reported in diagnostics
//   - src: the HCL source
//
// Returns:
//   - *Manifest: the validated manifest with directories resolved
//   - error: a parse, decode or validation error
func Parse(filename string, src []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("manifest: failed to parse %s: %w", filename, diags)
	}

	var m Manifest
	if diags := gohcl.DecodeBody(file.Body, nil, &m); diags.HasErrors() {
		return nil, fmt.Errorf("manifest: failed to decode %s: %w", filename, diags)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	m.resolve(filepath.Dir(filename))
	return &m, nil
}

// Program returns the program with the given name, or nil.
func (m *Manifest) Program(name string) *Program {
	for _, p := range m.Programs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SourceMapOptions returns the options for reading ShaderDir into a SourceMap.
//
// Returns:
//   - []shader.SourceMapBuilderOption: the extension filter, if any
func (m *Manifest) SourceMapOptions() []shader.SourceMapBuilderOption {
	if len(m.Extensions) == 0 {
		return nil
	}
	return []shader.SourceMapBuilderOption{shader.WithExtensions(m.Extensions...)}
}

// Builders creates one builder per program, keyed by program name. The manifest's
// max_depth is applied before options.
//
// Parameters:
//   - options: builder options applied to every program, such as shader.WithLogger
//
// Returns:
//   - map[string]shader.Builder: the builders keyed by program name
//   - error: the joined define conversion errors
func (m *Manifest) Builders(options ...shader.BuilderOption) (map[string]shader.Builder, error) {
	opts := append([]shader.BuilderOption{shader.WithMaxDepth(m.MaxDepth)}, options...)

	builders := make(map[string]shader.Builder, len(m.Programs))
	var errs []error
	for _, p := range m.Programs {
		b, err := p.Builder(opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		builders[p.Name] = b
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return builders, nil
}

func (m *Manifest) validate() error {
	var errs []error
	if m.ShaderDir == "" {
		errs = append(errs, fmt.Errorf("%w: shader_dir must not be empty", ErrInvalidManifest))
	}
	if m.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers must not be negative", ErrInvalidManifest))
	}
	if m.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: max_depth must not be negative", ErrInvalidManifest))
	}

	seen := make(map[string]struct{}, len(m.Programs))
	for _, p := range m.Programs {
		if _, ok := seen[p.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: program %q is declared more than once", ErrInvalidManifest, p.Name))
		}
		seen[p.Name] = struct{}{}
		if err := p.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manifest) resolve(base string) {
	m.OutputDir = common.Coalesce(m.OutputDir, DefaultOutputDir)
	if !filepath.IsAbs(m.ShaderDir) {
		m.ShaderDir = filepath.Join(base, m.ShaderDir)
	}
	if !filepath.IsAbs(m.OutputDir) {
		m.OutputDir = filepath.Join(base, m.OutputDir)
	}
	slices.SortStableFunc(m.Programs, func(a, b *Program) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
}
