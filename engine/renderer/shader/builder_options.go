package shader

import "log/slog"

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*builder)

// WithMaxDepth sets the maximum include nesting depth. Exceeding it fails the build with
// ErrTooDeep. Values <= 0 keep DefaultMaxDepth.
//
// Parameters:
//   - depth: the maximum nesting depth
//
// Returns:
//   - BuilderOption: option function to apply
func WithMaxDepth(depth int) BuilderOption {
	return func(b *builder) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for debug output during builds. A nil logger is ignored.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - BuilderOption: option function to apply
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLabel sets the label carried into the shader module descriptor and log output.
//
// Parameters:
//   - label: the module label
//
// Returns:
//   - BuilderOption: option function to apply
func WithLabel(label string) BuilderOption {
	return func(b *builder) {
		b.label = label
	}
}
