package testgen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Renderer turns a Suite into target-language source text.
type Renderer interface {
	Render(Suite) string
}

// PytestRenderer renders a Suite as a pytest module.
type PytestRenderer struct{}

func (PytestRenderer) Render(s Suite) string {
	var b strings.Builder
	for _, imp := range s.Imports {
		b.WriteString(imp)
		b.WriteByte('\n')
	}
	for _, cls := range s.Classes {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "class %s:\n", cls.Name)
		fmt.Fprintf(&b, "    \"\"\"%s\"\"\"\n\n", cls.Doc)
		fmt.Fprintf(&b, "    base_url = %s\n", pyString(cls.BaseURL))
		for _, c := range cls.Cases {
			b.WriteByte('\n')
			fmt.Fprintf(&b, "    def %s(self):\n", c.Name)
			fmt.Fprintf(&b, "        \"\"\"%s\"\"\"\n", c.Doc)
			for _, sec := range c.Sections {
				b.WriteByte('\n')
				if sec.Comment != "" {
					fmt.Fprintf(&b, "        # %s\n", sec.Comment)
				}
				for _, line := range sec.Lines {
					b.WriteString("        ")
					b.WriteString(line)
					b.WriteByte('\n')
				}
			}
		}
	}
	return b.String()
}

// pyLiteral formats a value as a Python literal. Booleans and nil come
// from decoded YAML/JSON, so True/False/None must be spelled the Python
// way; mixing in JSON tokens would make the generated file unimportable.
func pyLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case string:
		return pyString(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		// The token keeps its source form, so "25" stays an int literal
		// and "2.5" a float literal.
		return t.String()
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return pyFloat(float64(t))
	case float64:
		return pyFloat(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, pyString(k)+": "+pyLiteral(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, pyLiteral(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return pyString(fmt.Sprintf("%v", t))
	}
}

func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep a decimal point so the literal stays a Python float.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func pyString(s string) string {
	return strconv.Quote(s)
}

// pyAssignLines renders "name = value", expanding a mapping value across
// lines with sorted keys.
func pyAssignLines(name string, v any) []string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return []string{fmt.Sprintf("%s = %s", name, pyLiteral(v))}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+2)
	lines = append(lines, name+" = {")
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("    %s: %s,", pyString(k), pyLiteral(m[k])))
	}
	return append(lines, "}")
}

func pyIntList(codes []int) string {
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, strconv.Itoa(c))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
