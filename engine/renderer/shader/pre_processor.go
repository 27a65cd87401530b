// pre_processor.go implements the textual include and define passes. Includes are
// expanded depth-first, left to right, against a per-build blacklist of structural
// identities so every fragment is emitted at most once and cycles terminate. Define
// directives are stripped from the concatenated output and then applied as literal,
// longest-key-first substitutions.
//
// Both passes splice in a single left-to-right sweep over the recorded match ranges,
// carrying a signed byte offset that accounts for the length change of every splice
// already made.
package shader

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
)

var (
	// includeRegex matches a whole `#include "path"` line and captures the path.
	includeRegex = regexp.MustCompile(`(?m)^#include "(.+?)"$`)

	// defineRegex matches a whole `#define KEY VALUE` line with exactly two tokens.
	defineRegex = regexp.MustCompile(`(?m)^#define (\S+) (\S+)$`)
)

// resolver expands references for a single build. It is not safe for concurrent use.
type resolver struct {
	sm        SourceMap
	blacklist map[string]struct{}
	maxDepth  int
	logger    *slog.Logger
}

// resolve returns the fully expanded text of ref. A reference already expanded during
// this build yields the empty string.
func (r *resolver) resolve(ref Ref, depth int) (string, error) {
	if depth > r.maxDepth {
		return "", fmt.Errorf("%w: %s at depth %d", ErrTooDeep, ref, depth)
	}

	key := ref.key()
	if _, ok := r.blacklist[key]; ok {
		r.logger.Debug("include elided", slog.String("ref", ref.String()), slog.String("kind", ref.kind.String()))
		return "", nil
	}
	r.blacklist[key] = struct{}{}

	text, err := r.raw(ref, depth)
	if err != nil {
		return "", err
	}

	matches := includeRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	original := text
	dir := ref.Dir()
	offset := 0
	for _, m := range matches {
		raw := original[m[2]:m[3]]
		if !common.ValidShaderPath(raw) {
			return "", fmt.Errorf("%s: %w", ref, &InvalidIncludePathError{Raw: raw})
		}
		child := Path(common.JoinRooted(dir, raw))

		expansion, err := r.resolve(child, depth+1)
		if err != nil {
			return "", fmt.Errorf("%s: %w", ref, err)
		}

		start, end := m[0]+offset, m[1]+offset
		text = text[:start] + expansion + text[end:]
		offset += len(expansion) - (m[1] - m[0])
	}
	return text, nil
}

// raw returns the unexpanded text of ref.
func (r *resolver) raw(ref Ref, depth int) (string, error) {
	switch ref.kind {
	case RefSource:
		return ref.text, nil
	case RefPath:
		return r.sm.Lookup(ref.text)
	case RefBuilder:
		// nested builders keep their own define set untouched across builds
		return ref.builder.process(r.sm, depth+1, ref.builder.defines.clone())
	default:
		return "", fmt.Errorf("shader: unknown reference kind %d", ref.kind)
	}
}

// extractDefines removes every well-formed #define line from source and returns the
// remaining text together with the directives in order of appearance. The line break
// that followed a removed directive is kept.
func extractDefines(source string) (string, []Define) {
	matches := defineRegex.FindAllStringSubmatchIndex(source, -1)
	if len(matches) == 0 {
		return source, nil
	}

	defines := make([]Define, 0, len(matches))
	out := source
	offset := 0
	for _, m := range matches {
		defines = append(defines, Define{
			Key:   source[m[2]:m[3]],
			Value: source[m[4]:m[5]],
		})
		start, end := m[0]+offset, m[1]+offset
		out = out[:start] + out[end:]
		offset -= m[1] - m[0]
	}
	return out, defines
}

// applyDefines replaces every literal occurrence of each key with its value, in the given
// order. Callers pass the defines longest key first.
func applyDefines(source string, defines []Define) string {
	for _, d := range defines {
		source = strings.ReplaceAll(source, d.Key, d.Value)
	}
	return source
}
