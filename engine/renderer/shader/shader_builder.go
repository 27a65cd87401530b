package shader

import "log/slog"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithCompiler sets the compiler used to compile and reflect the processed source.
// Defaults to NewCompiler().
//
// Parameters:
//   - c: the compiler
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithCompiler(c Compiler) ShaderBuilderOption {
	return func(s *shader) {
		s.compiler = c
	}
}

// WithShaderLogger sets the logger used for debug output. A nil logger is ignored.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithShaderLogger(logger *slog.Logger) ShaderBuilderOption {
	return func(s *shader) {
		if logger != nil {
			s.logger = logger
		}
	}
}
