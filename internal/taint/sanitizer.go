// Package taint judges whether an enumerated data flow is neutralized before
// it reaches a sink. The only transforms accepted as sanitizing are global
// regex replacements that strip everything outside a safe alphanumeric
// subset, and numeric coercions, whose semantics discard markup entirely.
package taint

import (
	"strings"

	"github.com/xkilldash9x/crxflow-cli/internal/graph"
)

// Transform is one string transform observed along a data flow: a call such
// as replace, replaceAll, parseInt.
type Transform struct {
	// Callee is the unqualified function or method name.
	Callee string
	// Pattern is the source of the regex literal passed as the match
	// argument, without delimiters or flags. Empty when the argument is not
	// a regex literal.
	Pattern string
	// Global reports whether the regex carried the g flag.
	Global bool
}

// IsSanitizingPattern reports whether a regex pattern, used as the match of a
// per-occurrence replacement, necessarily removes every HTML-markup-relevant
// character (<, >, /, quotes). That holds exactly when the pattern is a
// negated description of a safe alphanumeric subset: \W, \D, or a negated
// character class whose contents are restricted to letters, digits and
// underscore. Patterns targeting literal substrings (a literal <script> tag,
// say) are rejected: case variations, spacing or alternative tag names walk
// right past them.
func IsSanitizingPattern(pattern string) bool {
	switch pattern {
	case `\W`, `\D`:
		return true
	}
	if strings.HasPrefix(pattern, "[^") && strings.HasSuffix(pattern, "]") {
		return isSafeNegatedClass(pattern[2 : len(pattern)-1])
	}
	return false
}

// isSafeNegatedClass reports whether a negated character class body mentions
// only letters, digits and underscore: lone characters, a-z style ranges, or
// the \w and \d escapes.
func isSafeNegatedClass(body string) bool {
	if body == "" {
		return false
	}
	i := 0
	for i < len(body) {
		switch c := body[i]; {
		case c == '\\':
			if i+1 >= len(body) {
				return false
			}
			if e := body[i+1]; e != 'w' && e != 'd' {
				return false
			}
			i += 2
		case isAlnum(c):
			if i+2 < len(body) && body[i+1] == '-' && isAlnum(body[i+2]) {
				i += 3
			} else {
				i++
			}
		case c == '_':
			i++
		default:
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// IsSanitizingTransform decides whether one transform neutralizes the flow.
// Numeric coercions qualify unconditionally. A replacement qualifies only
// with a sanitizing pattern applied per occurrence: a single-shot replace
// removes the first match and leaves the rest of the payload intact.
func IsSanitizingTransform(t Transform) bool {
	if isNumericCoercion(t.Callee) {
		return true
	}
	switch t.Callee {
	case "replaceAll":
		// replaceAll is per-occurrence by definition.
		return IsSanitizingPattern(t.Pattern)
	case "replace":
		return t.Global && IsSanitizingPattern(t.Pattern)
	}
	return false
}

func isNumericCoercion(callee string) bool {
	switch callee {
	case "parseInt", "parseFloat":
		return true
	}
	return false
}

// FlowIsSanitized scans the call nodes of an enumerated flow and reports
// whether any of them is a sanitizing transform.
func FlowIsSanitized(g *graph.Graph, flow graph.DataFlow) bool {
	for _, n := range flow {
		if g.Kind(n) != graph.KindCallExpression {
			continue
		}
		if t, ok := TransformAt(g, n); ok && IsSanitizingTransform(t) {
			return true
		}
	}
	return false
}

// TransformAt extracts the Transform described by a call node: the
// unqualified callee name plus the first regex literal found among the
// arguments, if any.
func TransformAt(g *graph.Graph, call graph.NodeID) (Transform, bool) {
	if g.Kind(call) != graph.KindCallExpression {
		return Transform{}, false
	}
	callee := g.Name(call)
	if callee == "" {
		return Transform{}, false
	}
	if i := strings.LastIndexByte(callee, '.'); i >= 0 {
		callee = callee[i+1:]
	}
	t := Transform{Callee: callee}

	g.Walk(call, func(n graph.NodeID) bool {
		if t.Pattern != "" {
			return false
		}
		if g.Kind(n) == graph.KindLiteral {
			if pattern, global, ok := ParseRegexLiteral(g.Name(n)); ok {
				t.Pattern = pattern
				t.Global = global
				return false
			}
		}
		return true
	})
	return t, true
}

// ParseRegexLiteral splits a JavaScript regex literal such as /\W/g into its
// pattern and whether the g flag is present.
func ParseRegexLiteral(raw string) (pattern string, global bool, ok bool) {
	if len(raw) < 2 || raw[0] != '/' {
		return "", false, false
	}
	end := strings.LastIndexByte(raw, '/')
	if end <= 0 {
		return "", false, false
	}
	return raw[1:end], strings.ContainsRune(raw[end+1:], 'g'), true
}
