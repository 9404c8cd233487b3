package graph

import "fmt"

// RemoveIncorrectFlowEdges repairs a structural over-approximation the PDG
// builder introduces for named function expressions. The name of a named
// function expression is bound only inside that function's own body (it
// exists to support self-recursion), so a data-dependency edge from the name
// identifier to a use outside the body can never represent a real runtime
// flow. The pass walks the subtree rooted at root and deletes every such
// edge, returning the total count removed.
//
// Edges between nodes that are both inside the body are kept, even in
// self-assignment idioms (x = x), since those can be meaningful across loop
// iterations or repeated invocations. The pass is deterministic and
// idempotent, mutates only the edge overlay, and never deletes a node.
//
// A FunctionExpression without a BlockStatement body is a malformed graph
// from the upstream builder and is surfaced as an error rather than patched;
// all downstream reasoning assumes well-formed syntax shapes.
func (g *Graph) RemoveIncorrectFlowEdges(root NodeID) (int, error) {
	removed := 0

	if g.Kind(root) == KindFunctionExpression {
		body, ok := g.ChildOfKind(root, KindBlockStatement)
		if !ok {
			loc := g.Loc(root)
			return 0, fmt.Errorf("malformed graph: function expression at %s:%d has no body block", loc.File, loc.Line)
		}
		for _, child := range g.Children(root) {
			if g.Kind(child) != KindIdentifier {
				continue
			}
			// The direct identifier child is the function's own name binding.
			// Snapshot the edges since removal mutates the adjacency list.
			edges := append([]FlowEdge(nil), g.Flows(child)...)
			for _, e := range edges {
				if !g.IsInside(e.To, body) {
					removed += g.RemoveDataDependency(child, e.To)
				}
			}
		}
	}

	for _, child := range g.Children(root) {
		n, err := g.RemoveIncorrectFlowEdges(child)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}
