package shader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-wgsl/common"
)

// RefKind identifies which variant a Ref holds.
type RefKind int

const (
	// RefSource is inline shader text with no filesystem identity.
	RefSource RefKind = iota

	// RefPath is a canonical path into a SourceMap.
	RefPath

	// RefBuilder is a nested Builder resolved as a unit.
	RefBuilder
)

// String returns a short name for the kind, used in log attributes.
func (k RefKind) String() string {
	switch k {
	case RefSource:
		return "source"
	case RefPath:
		return "path"
	case RefBuilder:
		return "builder"
	default:
		return "unknown"
	}
}

// Ref is a shader fragment to be included: inline text, a path into a SourceMap or a
// nested Builder. Refs are compared structurally, two path refs with the same canonical
// path are equal, two source refs are equal iff their text is, and two builder refs are
// equal iff their full directive sets are.
type Ref struct {
	kind    RefKind
	text    string // source text for RefSource, canonical path for RefPath
	builder *builder
}

// Source creates a Ref holding inline shader text. Its directory is the root.
//
// Parameters:
//   - text: the literal shader source
//
// Returns:
//   - Ref: the source reference
func Source(text string) Ref {
	return Ref{kind: RefSource, text: text}
}

// Path creates a Ref pointing into a SourceMap. The path is normalized with
// common.RootedPath; relative paths are taken as rooted at "/".
//
// Parameters:
//   - p: the shader path
//
// Returns:
//   - Ref: the path reference
func Path(p string) Ref {
	return Ref{kind: RefPath, text: common.RootedPath(p)}
}

// Sub creates a Ref wrapping a nested Builder. The nested builder is resolved with its
// own include and define passes whenever the reference is expanded. Panics if b is nil
// or was not created by NewBuilder.
//
// Parameters:
//   - b: the nested builder
//
// Returns:
//   - Ref: the builder reference
func Sub(b Builder) Ref {
	bb, ok := b.(*builder)
	if !ok || bb == nil {
		panic("shader: Sub requires a Builder created by NewBuilder")
	}
	return Ref{kind: RefBuilder, builder: bb}
}

// Kind returns which variant the reference holds.
func (r Ref) Kind() RefKind {
	return r.kind
}

// Text returns the inline source of a RefSource or the canonical path of a RefPath.
// It is empty for RefBuilder.
func (r Ref) Text() string {
	return r.text
}

// Builder returns the nested builder of a RefBuilder, or nil.
func (r Ref) Builder() Builder {
	if r.builder == nil {
		return nil
	}
	return r.builder
}

// Dir returns the logical directory that relative #include paths inside this fragment
// resolve against: the parent of a path reference, the root otherwise.
//
// Returns:
//   - string: the directory as a rooted path
func (r Ref) Dir() string {
	if r.kind == RefPath {
		return common.ParentDir(r.text)
	}
	return common.Root
}

// Equal reports whether two references are structurally identical.
//
// Parameters:
//   - other: the reference to compare against
//
// Returns:
//   - bool: true if both references have the same identity
func (r Ref) Equal(other Ref) bool {
	return r.key() == other.key()
}

// String describes the reference for logs and error messages without dumping whole sources.
func (r Ref) String() string {
	switch r.kind {
	case RefPath:
		return r.text
	case RefSource:
		return "source(" + strconv.Itoa(len(r.text)) + " bytes)"
	case RefBuilder:
		if r.builder.label != "" {
			return "builder(" + r.builder.label + ")"
		}
		return "builder(" + strconv.Itoa(len(r.builder.includes)) + " includes)"
	default:
		return "ref(?)"
	}
}

// key is the structural identity used for set membership and cycle detection. Every
// component is length-prefixed so concatenated identities can not collide.
func (r Ref) key() string {
	var sb strings.Builder
	r.writeKey(&sb)
	return sb.String()
}

func (r Ref) writeKey(sb *strings.Builder) {
	switch r.kind {
	case RefSource:
		writeField(sb, 's', r.text)
	case RefPath:
		writeField(sb, 'p', r.text)
	case RefBuilder:
		sb.WriteString("b{")
		for _, inc := range r.builder.includes {
			inc.writeKey(sb)
		}
		sb.WriteByte('|')
		for _, d := range r.builder.defines.list() {
			writeField(sb, 'k', d.Key)
			writeField(sb, 'v', d.Value)
		}
		sb.WriteByte('}')
	}
}

func writeField(sb *strings.Builder, tag byte, s string) {
	sb.WriteByte(tag)
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(':')
	sb.WriteString(s)
}
