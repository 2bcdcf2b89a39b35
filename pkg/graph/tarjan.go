package graph

// TarjanSCC computes the strongly connected components of the graph
// described by adjacency, a map from each node to its direct successors.
// Isolated nodes each form their own singleton component. The result
// order is not meaningful to callers; only component membership is.
func TarjanSCC[N comparable](nodes []N, adjacency map[N][]N) [][]N {
	t := &tarjanState[N]{
		index:   make(map[N]int),
		lowlink: make(map[N]int),
		onStack: make(map[N]bool),
	}
	for _, n := range nodes {
		if _, visited := t.index[n]; !visited {
			t.strongConnect(n, adjacency)
		}
	}
	return t.components
}

type tarjanState[N comparable] struct {
	counter    int
	index      map[N]int
	lowlink    map[N]int
	onStack    map[N]bool
	stack      []N
	components [][]N
}

func (t *tarjanState[N]) strongConnect(v N, adjacency map[N][]N) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range adjacency[v] {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w, adjacency)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var component []N
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, component)
	}
}
