package graph

// Strategy selects how branching is resolved during flow enumeration.
type Strategy uint8

const (
	// StrategyExhaustive keeps every branch: one result per distinct
	// leaf-terminated route. Can blow up on graphs with shared sub-flows.
	StrategyExhaustive Strategy = iota
	// StrategyRepresentativeLeaves keeps one shortest surviving path per
	// distinct terminal node, bounding output by reachable terminals rather
	// than routes.
	StrategyRepresentativeLeaves
)

// ParseStrategy maps a config string to a Strategy, defaulting to
// representative leaves.
func ParseStrategy(s string) Strategy {
	if s == "exhaustive" {
		return StrategyExhaustive
	}
	return StrategyRepresentativeLeaves
}

// DataFlow is one concrete path along data-dependency edges, from a seed node
// to a terminal node or a cycle closure. Consecutive entries are connected by
// a flow edge. Flows are immutable once returned.
type DataFlow []NodeID

// Terminal returns the flow's last node.
func (f DataFlow) Terminal() NodeID { return f[len(f)-1] }

func (f DataFlow) contains(id NodeID) bool {
	for _, n := range f {
		if n == id {
			return true
		}
	}
	return false
}

// Seed returns the singleton flow starting at n.
func (g *Graph) Seed(n NodeID) DataFlow { return DataFlow{n} }

// SeedByName returns one singleton flow per identifier occurrence with the
// given name, in arena order. A name bound at several sites seeds several
// flows.
func (g *Graph) SeedByName(name string) []DataFlow {
	var seeds []DataFlow
	for id := range g.nodes {
		if g.nodes[id].kind == KindIdentifier && g.nodes[id].name == name {
			seeds = append(seeds, DataFlow{NodeID(id)})
		}
	}
	return seeds
}

// Continue extends path from its terminal node along outgoing data-dependency
// edges under the chosen strategy. A node already present in the path is
// never revisited, which bounds every flow's length by the arena size;
// enumeration always terminates and always returns at least the given path.
// A terminal with zero acceptable outgoing edges yields the path unchanged.
func (g *Graph) Continue(path DataFlow, strategy Strategy) []DataFlow {
	if strategy == StrategyRepresentativeLeaves {
		return g.continueRepresentative(path)
	}
	return g.continueExhaustive(path)
}

// continueExhaustive spawns one branch per acceptable outgoing edge and
// recurses until every branch is closed.
func (g *Graph) continueExhaustive(path DataFlow) []DataFlow {
	last := path.Terminal()
	var results []DataFlow
	for _, e := range g.flows[last] {
		if path.contains(e.To) {
			// Cycle guard: the branch closes here.
			continue
		}
		next := make(DataFlow, len(path), len(path)+1)
		copy(next, path)
		next = append(next, e.To)
		results = append(results, g.continueExhaustive(next)...)
	}
	if len(results) == 0 {
		// No acceptable outgoing edge: the path is closed.
		return []DataFlow{path}
	}
	return results
}

// continueRepresentative runs a breadth-first frontier expansion outward from
// the path's terminal with a first-arrival-wins rule: each node is claimed by
// the first (hence shortest, edges being unweighted) branch that reaches it,
// and a flow is emitted the first time a terminal node is reached. Terminal
// here means no acceptable successor at visit time, not out-degree zero: an
// interior node whose successors were all claimed by sibling branches closes
// its own flow.
func (g *Graph) continueRepresentative(path DataFlow) []DataFlow {
	start := path.Terminal()

	visited := make(map[NodeID]bool, len(path))
	for _, n := range path {
		visited[n] = true
	}
	prev := make(map[NodeID]NodeID)

	var results []DataFlow
	emit := func(terminal NodeID) {
		var suffix []NodeID
		for cur := terminal; cur != start; cur = prev[cur] {
			suffix = append(suffix, cur)
		}
		flow := make(DataFlow, len(path), len(path)+len(suffix))
		copy(flow, path)
		for i := len(suffix) - 1; i >= 0; i-- {
			flow = append(flow, suffix[i])
		}
		results = append(results, flow)
	}

	frontier := []NodeID{start}
	for len(frontier) > 0 {
		var next []NodeID
		for _, n := range frontier {
			advanced := false
			for _, e := range g.flows[n] {
				if visited[e.To] {
					continue
				}
				visited[e.To] = true
				prev[e.To] = n
				next = append(next, e.To)
				advanced = true
			}
			if !advanced {
				// No acceptable outgoing edge: n is a terminal (leaf or
				// cycle closure); its shortest path is final.
				emit(n)
			}
		}
		frontier = next
	}
	return results
}
