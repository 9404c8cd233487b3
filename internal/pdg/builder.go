// Package pdg turns JavaScript source into the node arena and naive def-use
// data-dependency overlay consumed by the taint engine. The builder is
// deliberately shallow: it tracks lexical bindings with a scope stack and
// links definitions to uses, leaving semantic repair (named function
// expression scoping) to the graph's edge-correction pass.
package pdg

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.uber.org/zap"

	"github.com/xkilldash9x/crxflow-cli/internal/graph"
)

// Builder parses scripts and assembles their PDGs.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder returns a Builder logging through the given logger.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger.Named("pdg")}
}

// Build parses source and returns the graph plus its root node.
func (b *Builder) Build(ctx context.Context, filename string, source []byte) (*graph.Graph, graph.NodeID, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, graph.InvalidNode, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	st := &buildState{
		g:      graph.New(),
		file:   filename,
		source: source,
		scopes: []map[string]graph.NodeID{{}},
	}
	root := st.walk(tree.RootNode(), graph.InvalidNode)
	b.logger.Debug("PDG built", zap.String("file", filename), zap.Int("nodes", st.g.Len()))
	return st.g, root, nil
}

type buildState struct {
	g      *graph.Graph
	file   string
	source []byte
	scopes []map[string]graph.NodeID
}

func kindOf(t string) graph.Kind {
	switch t {
	case "program":
		return graph.KindProgram
	case "identifier":
		return graph.KindIdentifier
	case "function", "function_expression", "arrow_function", "generator_function":
		return graph.KindFunctionExpression
	case "function_declaration", "generator_function_declaration":
		return graph.KindFunctionDeclaration
	case "statement_block":
		return graph.KindBlockStatement
	case "call_expression", "new_expression":
		return graph.KindCallExpression
	case "member_expression", "subscript_expression":
		return graph.KindMemberExpression
	case "assignment_expression", "augmented_assignment_expression":
		return graph.KindAssignmentExpression
	case "regex", "string", "template_string", "number", "true", "false", "null", "undefined":
		return graph.KindLiteral
	default:
		return graph.KindOther
	}
}

func (st *buildState) text(n *sitter.Node) string { return n.Content(st.source) }

func (st *buildState) loc(n *sitter.Node) graph.Loc {
	return graph.Loc{File: st.file, Line: int(n.StartPoint().Row) + 1}
}

func (st *buildState) push() { st.scopes = append(st.scopes, map[string]graph.NodeID{}) }
func (st *buildState) pop()  { st.scopes = st.scopes[:len(st.scopes)-1] }

func (st *buildState) declare(name string, id graph.NodeID) {
	st.scopes[len(st.scopes)-1][name] = id
}

func (st *buildState) lookup(name string) (graph.NodeID, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if id, ok := st.scopes[i][name]; ok {
			return id, true
		}
	}
	return graph.InvalidNode, false
}

// newNode materializes n in the arena without visiting children. Identifier,
// literal and member nodes keep their source text as the node name.
func (st *buildState) newNode(n *sitter.Node, parent graph.NodeID) graph.NodeID {
	kind := kindOf(n.Type())
	name := ""
	switch kind {
	case graph.KindIdentifier, graph.KindLiteral, graph.KindMemberExpression:
		name = st.text(n)
	case graph.KindOther:
		name = n.Type()
	}
	return st.g.NewNode(kind, name, st.loc(n), parent)
}

func (st *buildState) walk(n *sitter.Node, parent graph.NodeID) graph.NodeID {
	if n == nil || n.IsNull() {
		return graph.InvalidNode
	}

	switch n.Type() {
	case "function", "function_expression", "function_declaration",
		"arrow_function", "generator_function", "generator_function_declaration":
		return st.walkFunction(n, parent)
	case "variable_declarator":
		return st.walkDeclarator(n, parent)
	case "assignment_expression", "augmented_assignment_expression":
		return st.walkAssignment(n, parent)
	case "call_expression", "new_expression":
		return st.walkCall(n, parent)
	case "identifier":
		id := st.newNode(n, parent)
		// Use position: connect the binding to this occurrence.
		if decl, ok := st.lookup(st.text(n)); ok && decl != id {
			st.g.AddDataDependency(decl, id, "flow")
		}
		return id
	}

	id := st.newNode(n, parent)
	st.walkChildren(n, id)
	return id
}

func (st *buildState) walkChildren(n *sitter.Node, parent graph.NodeID) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		st.walk(n.NamedChild(i), parent)
	}
}

// walkFunction handles every function-shaped construct. The name binding of
// a function lands in the enclosing scope: correct hoisting behavior for
// declarations, and a deliberate over-approximation for named function
// expressions that the edge-correction pass repairs afterwards.
func (st *buildState) walkFunction(n *sitter.Node, parent graph.NodeID) graph.NodeID {
	fnID := st.g.NewNode(kindOf(n.Type()), "", st.loc(n), parent)

	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		nameID := st.g.NewNode(graph.KindIdentifier, st.text(nameNode), st.loc(nameNode), fnID)
		st.declare(st.text(nameNode), nameID)
	}

	st.push()
	defer st.pop()

	params := n.ChildByFieldName("parameters")
	if params == nil {
		params = n.ChildByFieldName("formal_parameters")
	}
	if params != nil {
		paramsID := st.newNode(params, fnID)
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p.Type() == "identifier" {
				paramID := st.g.NewNode(graph.KindIdentifier, st.text(p), st.loc(p), paramsID)
				st.declare(st.text(p), paramID)
				continue
			}
			st.walk(p, paramsID)
		}
	} else if p := n.ChildByFieldName("parameter"); p != nil && p.Type() == "identifier" {
		// Parenthesis-free arrow function parameter: x => ...
		paramID := st.g.NewNode(graph.KindIdentifier, st.text(p), st.loc(p), fnID)
		st.declare(st.text(p), paramID)
	}

	if body := n.ChildByFieldName("body"); body != nil {
		st.walk(body, fnID)
	}
	return fnID
}

// walkDeclarator declares the bound name and links value uses into it.
func (st *buildState) walkDeclarator(n *sitter.Node, parent graph.NodeID) graph.NodeID {
	id := st.newNode(n, parent)

	nameID := graph.InvalidNode
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		if nameNode.Type() == "identifier" {
			nameID = st.g.NewNode(graph.KindIdentifier, st.text(nameNode), st.loc(nameNode), id)
			st.declare(st.text(nameNode), nameID)
		} else {
			st.walk(nameNode, id)
		}
	}

	if value := n.ChildByFieldName("value"); value != nil {
		valID := st.walk(value, id)
		if nameID != graph.InvalidNode && valID != graph.InvalidNode {
			st.linkUses(valID, nameID)
		}
	}
	return id
}

// walkAssignment rebinds identifier targets and links right-hand uses into
// the target, so later reads of the name continue the flow.
func (st *buildState) walkAssignment(n *sitter.Node, parent graph.NodeID) graph.NodeID {
	id := st.g.NewNode(graph.KindAssignmentExpression, "", st.loc(n), parent)

	targetID := graph.InvalidNode
	if left := n.ChildByFieldName("left"); left != nil {
		if left.Type() == "identifier" {
			targetID = st.g.NewNode(graph.KindIdentifier, st.text(left), st.loc(left), id)
			st.declare(st.text(left), targetID)
		} else {
			targetID = st.walk(left, id)
		}
	}

	if right := n.ChildByFieldName("right"); right != nil {
		rightID := st.walk(right, id)
		if targetID != graph.InvalidNode && rightID != graph.InvalidNode {
			st.linkUses(rightID, targetID)
		}
	}
	return id
}

// walkCall names the call after its callee text and routes callee and
// argument uses through the call node, so enumerated flows pass through it
// and the sanitizer classifier can see the transform.
func (st *buildState) walkCall(n *sitter.Node, parent graph.NodeID) graph.NodeID {
	name := ""
	callee := n.ChildByFieldName("function")
	if callee == nil {
		callee = n.ChildByFieldName("constructor")
	}
	if callee != nil {
		name = st.text(callee)
	}
	id := st.g.NewNode(graph.KindCallExpression, name, st.loc(n), parent)

	if callee != nil {
		calleeID := st.walk(callee, id)
		if calleeID != graph.InvalidNode {
			st.linkUses(calleeID, id)
		}
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		argsID := st.newNode(args, id)
		for i := 0; i < int(args.NamedChildCount()); i++ {
			if argID := st.walk(args.NamedChild(i), argsID); argID != graph.InvalidNode {
				st.linkUses(argID, id)
			}
		}
	}
	return id
}

// linkUses adds a data-dependency edge into target from every identifier use
// directly visible in the subtree at root. Nested calls contribute their
// call node instead of their internals (the call's own result feeds the
// target), and function bodies are opaque.
func (st *buildState) linkUses(root, target graph.NodeID) {
	if root == target {
		return
	}
	st.g.Walk(root, func(n graph.NodeID) bool {
		switch st.g.Kind(n) {
		case graph.KindCallExpression:
			if n == target {
				return false
			}
			st.g.AddDataDependency(n, target, "assign")
			return false
		case graph.KindFunctionExpression, graph.KindFunctionDeclaration:
			return false
		case graph.KindIdentifier:
			st.g.AddDataDependency(n, target, "assign")
			return false
		}
		return true
	})
}
