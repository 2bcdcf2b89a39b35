package graph

import "testing"

func TestDAG_HasPath(t *testing.T) {
	g := New[int]()
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 3)

	if !g.HasPath(0, 3) {
		t.Error("expected path 0 -> 3")
	}
	if g.HasPath(3, 0) {
		t.Error("expected no path 3 -> 0")
	}
	if !g.HasPath(0, 0) {
		t.Error("a node should have a trivial path to itself")
	}
	if g.HasPath(1, 2) {
		t.Error("expected no path between siblings 1 and 2")
	}
}

func TestDAG_IsConcurrent(t *testing.T) {
	g := New[int]()
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 4)
	g.AddEdge(2, 4)

	if !g.IsConcurrent(1, 2) {
		t.Error("siblings 1 and 2 should be concurrent")
	}
	if g.IsConcurrent(0, 1) {
		t.Error("ancestor/descendant pair should not be concurrent")
	}
	if g.IsConcurrent(1, 1) {
		t.Error("a node is never concurrent with itself")
	}
}

func TestTarjanSCC_DetectsCycle(t *testing.T) {
	adjacency := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
		"D": {},
	}
	nodes := []string{"A", "B", "C", "D"}

	sccs := TarjanSCC(nodes, adjacency)

	var cycle []string
	for _, scc := range sccs {
		if len(scc) > 1 {
			cycle = scc
		}
	}
	if len(cycle) != 3 {
		t.Fatalf("expected a 3-node cycle, got %v", cycle)
	}
	seen := map[string]bool{}
	for _, n := range cycle {
		seen[n] = true
	}
	for _, n := range []string{"A", "B", "C"} {
		if !seen[n] {
			t.Errorf("expected %q in detected cycle %v", n, cycle)
		}
	}
}

func TestTarjanSCC_AcyclicGraphHasOnlySingletons(t *testing.T) {
	adjacency := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {},
	}
	nodes := []string{"A", "B", "C"}

	sccs := TarjanSCC(nodes, adjacency)
	for _, scc := range sccs {
		if len(scc) != 1 {
			t.Errorf("expected only singleton components, got %v", scc)
		}
	}
}
