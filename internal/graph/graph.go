// Package graph holds the program-dependency graph the taint engine reasons
// about: a rooted containment tree of syntax nodes built once by the PDG
// builder, overlaid with a separate, possibly cyclic, data-dependency edge
// relation. Nodes live in an arena and are addressed by stable indices, so
// cyclic overlay edges never create ownership cycles.
package graph

// Kind tags the semantic node kind. The set is closed; the engine only ever
// branches on a handful of kinds and treats the rest as opaque structure.
type Kind uint8

const (
	KindOther Kind = iota
	KindProgram
	KindIdentifier
	KindFunctionExpression
	KindFunctionDeclaration
	KindBlockStatement
	KindCallExpression
	KindMemberExpression
	KindAssignmentExpression
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "Program"
	case KindIdentifier:
		return "Identifier"
	case KindFunctionExpression:
		return "FunctionExpression"
	case KindFunctionDeclaration:
		return "FunctionDeclaration"
	case KindBlockStatement:
		return "BlockStatement"
	case KindCallExpression:
		return "CallExpression"
	case KindMemberExpression:
		return "MemberExpression"
	case KindAssignmentExpression:
		return "AssignmentExpression"
	case KindLiteral:
		return "Literal"
	default:
		return "Other"
	}
}

// NodeID is a stable arena index.
type NodeID int32

// InvalidNode marks an absent node reference (e.g. the root's parent).
const InvalidNode NodeID = -1

// Loc is a source location.
type Loc struct {
	File string
	Line int
}

// FlowEdge is one outgoing data-dependency edge. Multi-edges between the same
// pair of nodes are permitted.
type FlowEdge struct {
	To    NodeID
	Label string
}

type node struct {
	kind     Kind
	name     string
	loc      Loc
	parent   NodeID
	children []NodeID
}

// Graph is the arena of nodes plus the data-dependency overlay. It is built
// once, repaired in place by the edge-correction pass, and then queried; the
// containment tree itself is never mutated after construction.
type Graph struct {
	nodes []node
	flows map[NodeID][]FlowEdge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{flows: make(map[NodeID][]FlowEdge)}
}

// NewNode appends a node to the arena and links it under parent (pass
// InvalidNode for the root). The child list preserves insertion order.
func (g *Graph) NewNode(kind Kind, name string, loc Loc, parent NodeID) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{kind: kind, name: name, loc: loc, parent: parent})
	if parent != InvalidNode {
		g.nodes[parent].children = append(g.nodes[parent].children, id)
	}
	return id
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// Kind returns the node's kind tag.
func (g *Graph) Kind(id NodeID) Kind { return g.nodes[id].kind }

// Name returns the node's name or raw text (identifier name, literal source).
func (g *Graph) Name(id NodeID) string { return g.nodes[id].name }

// Loc returns the node's source location.
func (g *Graph) Loc(id NodeID) Loc { return g.nodes[id].loc }

// Parent returns the node's parent, or InvalidNode for the root.
func (g *Graph) Parent(id NodeID) NodeID { return g.nodes[id].parent }

// Children returns the node's ordered child list. Callers must not mutate it.
func (g *Graph) Children(id NodeID) []NodeID { return g.nodes[id].children }

// Flows returns the node's outgoing data-dependency edges. Callers must not
// mutate the returned slice.
func (g *Graph) Flows(id NodeID) []FlowEdge { return g.flows[id] }

// IsInside reports whether n is boundary itself or a descendant of it in the
// containment tree. The walk is O(depth).
func (g *Graph) IsInside(n, boundary NodeID) bool {
	for cur := n; cur != InvalidNode; cur = g.nodes[cur].parent {
		if cur == boundary {
			return true
		}
	}
	return false
}

// AddDataDependency records a directed data-dependency edge from -> to.
// Duplicates are permitted; the builder is responsible for not creating
// unwanted multi-edges.
func (g *Graph) AddDataDependency(from, to NodeID, label string) {
	g.flows[from] = append(g.flows[from], FlowEdge{To: to, Label: label})
}

// RemoveDataDependency removes every edge from -> to and returns the number
// removed. Removing a non-existent edge is a no-op returning 0.
func (g *Graph) RemoveDataDependency(from, to NodeID) int {
	edges := g.flows[from]
	kept := edges[:0]
	removed := 0
	for _, e := range edges {
		if e.To == to {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0
	}
	if len(kept) == 0 {
		delete(g.flows, from)
	} else {
		g.flows[from] = kept
	}
	return removed
}

// ChildOfKind returns the first direct child of the given kind.
func (g *Graph) ChildOfKind(id NodeID, kind Kind) (NodeID, bool) {
	for _, c := range g.nodes[id].children {
		if g.nodes[c].kind == kind {
			return c, true
		}
	}
	return InvalidNode, false
}

// Walk visits id and every descendant in depth-first preorder. Returning
// false from fn prunes the subtree below that node.
func (g *Graph) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range g.nodes[id].children {
		g.Walk(c, fn)
	}
}
