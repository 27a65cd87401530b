package shader

import (
	"log/slog"

	"github.com/gogpu/naga/spirv"
)

// CompilerOption is a functional option for configuring a Compiler.
type CompilerOption func(*nagaCompiler)

// WithValidation enables or disables IR validation before SPIR-V generation.
//
// Parameters:
//   - enabled: if true, validation errors fail the compile
//
// Returns:
//   - CompilerOption: option function to apply
func WithValidation(enabled bool) CompilerOption {
	return func(c *nagaCompiler) {
		c.validate = enabled
	}
}

// WithDebugInfo enables debug names and line information in the generated SPIR-V.
//
// Parameters:
//   - enabled: if true, debug info is emitted
//
// Returns:
//   - CompilerOption: option function to apply
func WithDebugInfo(enabled bool) CompilerOption {
	return func(c *nagaCompiler) {
		c.debug = enabled
	}
}

// WithSPIRVVersion sets the targeted SPIR-V version.
//
// Parameters:
//   - version: the SPIR-V version
//
// Returns:
//   - CompilerOption: option function to apply
func WithSPIRVVersion(version spirv.Version) CompilerOption {
	return func(c *nagaCompiler) {
		c.spirvVersion = version
	}
}

// WithCompilerLogger sets the logger used for debug output. A nil logger is ignored.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - CompilerOption: option function to apply
func WithCompilerLogger(logger *slog.Logger) CompilerOption {
	return func(c *nagaCompiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}
