package taint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/crxflow-cli/internal/graph"
)

func TestIsSanitizingPattern(t *testing.T) {
	sanitizing := []string{
		`\W`,
		`[^\w]`,
		`\D`,
		`[^\d]`,
		`[^a-zA-Z0-9]`,
		`[^a-z0-9]`,
		`[^\w\d]`,
		`[^a-zA-Z0-9_]`,
	}
	for _, p := range sanitizing {
		assert.True(t, IsSanitizingPattern(p), "pattern %q must sanitize", p)
	}

	notSanitizing := []string{
		``,
		`foobar`,
		`<script>`,
		`<[^>]*>`,
		`\w`,       // keeps markup, strips the safe part
		`\s`,
		`[^<>]`,    // negated class mentioning markup chars
		`[^a-z<]`,
		`[^]`,      // empty class body
		`[^\s]`,    // unsafe escape inside the class
		`[a-z]`,    // not negated at all
	}
	for _, p := range notSanitizing {
		assert.False(t, IsSanitizingPattern(p), "pattern %q must not sanitize", p)
	}
}

func TestIsSanitizingTransform(t *testing.T) {
	cases := []struct {
		name string
		tr   Transform
		want bool
	}{
		{"replaceAll global regex", Transform{Callee: "replaceAll", Pattern: `\W`, Global: true}, true},
		{"replaceAll without g flag", Transform{Callee: "replaceAll", Pattern: `\W`, Global: false}, true},
		{"replace with g flag", Transform{Callee: "replace", Pattern: `\W`, Global: true}, true},
		{"replace without g flag", Transform{Callee: "replace", Pattern: `\W`, Global: false}, false},
		{"replace unsafe pattern", Transform{Callee: "replace", Pattern: `<script>`, Global: true}, false},
		{"parseInt", Transform{Callee: "parseInt"}, true},
		{"parseFloat", Transform{Callee: "parseFloat"}, true},
		{"unrelated call", Transform{Callee: "trim"}, false},
		{"concat with regex", Transform{Callee: "concat", Pattern: `\W`, Global: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSanitizingTransform(tc.tr))
		})
	}
}

func TestParseRegexLiteral(t *testing.T) {
	pattern, global, ok := ParseRegexLiteral(`/\W/g`)
	require.True(t, ok)
	assert.Equal(t, `\W`, pattern)
	assert.True(t, global)

	pattern, global, ok = ParseRegexLiteral(`/\W/`)
	require.True(t, ok)
	assert.Equal(t, `\W`, pattern)
	assert.False(t, global)

	pattern, global, ok = ParseRegexLiteral(`/[^a-z0-9]/gi`)
	require.True(t, ok)
	assert.Equal(t, `[^a-z0-9]`, pattern)
	assert.True(t, global)

	_, _, ok = ParseRegexLiteral(`"plain string"`)
	assert.False(t, ok)
	_, _, ok = ParseRegexLiteral(`/`)
	assert.False(t, ok)
}

// callGraph builds a minimal flow around one call node carrying the given
// callee and first argument literal.
func callGraph(callee, literal string) (*graph.Graph, graph.DataFlow) {
	g := graph.New()
	root := g.NewNode(graph.KindProgram, "", graph.Loc{File: "t.js"}, graph.InvalidNode)
	src := g.NewNode(graph.KindIdentifier, "msg", graph.Loc{File: "t.js", Line: 1}, root)
	call := g.NewNode(graph.KindCallExpression, callee, graph.Loc{File: "t.js", Line: 2}, root)
	args := g.NewNode(graph.KindOther, "arguments", graph.Loc{File: "t.js", Line: 2}, call)
	if literal != "" {
		g.NewNode(graph.KindLiteral, literal, graph.Loc{File: "t.js", Line: 2}, args)
	}
	sink := g.NewNode(graph.KindCallExpression, "eval", graph.Loc{File: "t.js", Line: 3}, root)

	g.AddDataDependency(src, call, "assign")
	g.AddDataDependency(call, sink, "assign")
	return g, graph.DataFlow{src, call, sink}
}

func TestFlowIsSanitized(t *testing.T) {
	g, flow := callGraph("msg.replace", `/\W/g`)
	assert.True(t, FlowIsSanitized(g, flow))

	g, flow = callGraph("msg.replace", `/\W/`)
	assert.False(t, FlowIsSanitized(g, flow), "single-shot replace leaves later occurrences intact")

	g, flow = callGraph("msg.replaceAll", `/\W/g`)
	assert.True(t, FlowIsSanitized(g, flow))

	g, flow = callGraph("parseInt", "")
	assert.True(t, FlowIsSanitized(g, flow))

	g, flow = callGraph("msg.replace", `/<script>/g`)
	assert.False(t, FlowIsSanitized(g, flow), "literal tag matches are bypassable")

	g, flow = callGraph("msg.trim", "")
	assert.False(t, FlowIsSanitized(g, flow))
}

func TestTransformAt(t *testing.T) {
	g, flow := callGraph("data.replace", `/[^\w]/g`)

	tr, ok := TransformAt(g, flow[1])
	require.True(t, ok)
	assert.Equal(t, "replace", tr.Callee, "callee is unqualified")
	assert.Equal(t, `[^\w]`, tr.Pattern)
	assert.True(t, tr.Global)

	_, ok = TransformAt(g, flow[0])
	assert.False(t, ok, "only call nodes describe transforms")
}
