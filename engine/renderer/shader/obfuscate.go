package shader

import (
	"math/rand/v2"
	"strings"
)

const (
	obfuscatedLength   = 16
	obfuscationLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// randomIdentifier returns a random identifier of obfuscatedLength ASCII letters.
func randomIdentifier() string {
	var sb strings.Builder
	sb.Grow(obfuscatedLength)
	for range obfuscatedLength {
		sb.WriteByte(obfuscationLetters[rand.IntN(len(obfuscationLetters))])
	}
	return sb.String()
}

// ObfuscateFn renames every call site "name(" inside the referenced fragment to a random
// 16-letter identifier. Inline sources are rewritten in place. A path reference is
// replaced by a nested builder including that path with the rename registered as a
// define, and a builder reference gets the define added to the nested builder.
//
// The rewrite is textual, not lexical: "name(" inside a longer identifier such as
// "my_name(" is rewritten too.
//
// Parameters:
//   - name: the function name to obfuscate
//
// Returns:
//   - string: the generated identifier
func (r *Ref) ObfuscateFn(name string) string {
	obf := randomIdentifier()
	switch r.kind {
	case RefSource:
		r.text = strings.ReplaceAll(r.text, name+"(", obf+"(")
	case RefPath:
		b := NewBuilder()
		b.Include(*r).Define(name+"(", obf+"(")
		*r = Sub(b)
	case RefBuilder:
		r.builder.Define(name+"(", obf+"(")
	}
	return obf
}
