package testgen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/openclaw/swagger2pytest/internal/spec"
)

// Identifier derivation is pure; uniqueness across a generation run is the
// caller's concern and handled by nameRegistry.

// staticSegments returns the non-placeholder segments of a path template.
func staticSegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// ClassName derives the test class identifier for an endpoint: static path
// segments capitalized and concatenated, followed by the capitalized verb,
// with a Root fallback for placeholder-only paths. A declared operationId
// overrides the path derivation entirely.
func ClassName(ep spec.Endpoint) string {
	if ep.OperationID != "" {
		return titleWords(ep.OperationID)
	}
	verb := capitalize(string(ep.Method))
	segs := staticSegments(ep.Path)
	if len(segs) == 0 {
		return "Root" + verb
	}
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(capitalize(seg))
	}
	b.WriteString(verb)
	return b.String()
}

// FileName derives the snake_case file stem from a path template.
func FileName(path string) string {
	segs := staticSegments(path)
	if len(segs) == 0 {
		return "root"
	}
	return strings.Join(segs, "_")
}

// MethodSuffix derives the test method suffix from the first three static
// path segments. Distinct endpoints agreeing on those segments collide;
// nameRegistry disambiguates at the call site.
func MethodSuffix(path string) string {
	segs := staticSegments(path)
	if len(segs) == 0 {
		return "root"
	}
	if len(segs) > 3 {
		segs = segs[:3]
	}
	return strings.Join(segs, "_")
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// titleWords turns an underscore-separated identifier into a concatenated
// title-cased one: "get_user_by_id" -> "GetUserById".
func titleWords(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(s, "_") {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

// nameRegistry hands out collision-free identifiers by appending a numeric
// discriminator to repeated names.
type nameRegistry struct {
	seen map[string]int
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{seen: make(map[string]int)}
}

// claim returns name unchanged on first use, then name_2, name_3, and so
// on for later claims of the same name.
func (r *nameRegistry) claim(name string) string {
	n := r.seen[name]
	r.seen[name] = n + 1
	if n == 0 {
		return name
	}
	for {
		candidate := fmt.Sprintf("%s_%d", name, n+1)
		if r.seen[candidate] == 0 {
			r.seen[candidate] = 1
			return candidate
		}
		n++
	}
}
