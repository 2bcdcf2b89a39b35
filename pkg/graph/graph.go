// Package graph provides a small generic directed-graph utility used to
// reason about causal relationships between content-addressed
// operations: whether one operation is a causal ancestor of another, or
// whether two operations happened concurrently.
package graph

// DAG is a directed graph over comparable node identifiers. It is not
// safe for concurrent use; callers that share a DAG across goroutines
// must guard it themselves (see pkg/authority, which wraps one behind
// its own mutex).
type DAG[ID comparable] struct {
	nodes map[ID]struct{}
	edges map[ID]map[ID]struct{}
}

// New creates an empty DAG.
func New[ID comparable]() *DAG[ID] {
	return &DAG[ID]{
		nodes: make(map[ID]struct{}),
		edges: make(map[ID]map[ID]struct{}),
	}
}

// AddNode registers id, if not already present.
func (g *DAG[ID]) AddNode(id ID) {
	g.nodes[id] = struct{}{}
}

// AddEdge adds a directed edge from -> to, implying "to" causally
// depends on "from". Both endpoints are registered as nodes if needed.
func (g *DAG[ID]) AddEdge(from, to ID) {
	g.AddNode(from)
	g.AddNode(to)
	if g.edges[from] == nil {
		g.edges[from] = make(map[ID]struct{})
	}
	g.edges[from][to] = struct{}{}
}

// HasPath reports whether there is a directed path from -> to (to is a
// causal descendant of from), following zero or more edges.
func (g *DAG[ID]) HasPath(from, to ID) bool {
	if from == to {
		return true
	}
	visited := make(map[ID]struct{})
	stack := []ID{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		for next := range g.edges[n] {
			if next == to {
				return true
			}
			if _, ok := visited[next]; !ok {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Nodes returns every node registered in the graph, in no particular
// order.
func (g *DAG[ID]) Nodes() []ID {
	out := make([]ID, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Successors returns the direct out-edges of id.
func (g *DAG[ID]) Successors(id ID) []ID {
	out := make([]ID, 0, len(g.edges[id]))
	for n := range g.edges[id] {
		out = append(out, n)
	}
	return out
}

// Sinks returns every node with no outgoing edges: the tips of the
// graph, i.e. operations nothing has (yet) been built on top of.
func (g *DAG[ID]) Sinks() []ID {
	var out []ID
	for n := range g.nodes {
		if len(g.edges[n]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// IsConcurrent reports whether a and b are unordered: neither is a
// causal ancestor of the other. A node is never concurrent with itself.
func (g *DAG[ID]) IsConcurrent(a, b ID) bool {
	if a == b {
		return false
	}
	return !g.hasPathExcludingSelf(a, b) && !g.hasPathExcludingSelf(b, a)
}

func (g *DAG[ID]) hasPathExcludingSelf(from, to ID) bool {
	visited := make(map[ID]struct{})
	stack := []ID{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		for next := range g.edges[n] {
			if next == to {
				return true
			}
			if _, ok := visited[next]; !ok {
				stack = append(stack, next)
			}
		}
	}
	return false
}
