// Package authority tracks the removal and delegation history of group
// members and detects mutual-remove cycles: situations where two or
// more members concurrently remove each other (directly, or through a
// chain of delegated authority), leaving no well-defined winner.
//
// A node in the authority graph is the pair (actor, operation). Every
// operation gets its own copy of each actor it touches, so that
// concurrent operations naturally end up as distinct nodes instead of
// collapsing into one another — this is what lets the graph reason
// about concurrency instead of only about identity.
package authority

import (
	"sync"

	"github.com/pion/logging"

	"github.com/backkem/groupcore/pkg/graph"
)

type removal[ID, OP comparable] struct {
	remover ID
	removed ID
	op      OP
}

type delegation[ID, OP comparable] struct {
	delegator ID
	delegate  ID
	op        OP
}

type node[ID, OP comparable] struct {
	actor ID
	op    OP
}

type builtGraph[ID, OP comparable] struct {
	nodes     []node[ID, OP]
	adjacency map[node[ID, OP]][]node[ID, OP]
}

// Config configures a Graphs instance.
type Config struct {
	LoggerFactory logging.LoggerFactory
}

// Graphs maintains one authority graph per group, concurrency-aware and
// cached until invalidated by a new removal or delegation. It is safe
// for concurrent use.
type Graphs[ID, OP comparable] struct {
	mu sync.Mutex

	deps        *graph.DAG[OP]
	removals    map[ID][]removal[ID, OP]
	delegations map[ID][]delegation[ID, OP]
	built       map[ID]*builtGraph[ID, OP]
	cycles      map[ID]map[OP]struct{}

	log logging.LeveledLogger
}

// New creates a Graphs instance over the given operation dependency DAG.
// The dependency graph records, for every pair of operations, whether
// one causally precedes the other — the authority graph consults it to
// decide whether a removal or delegation happened concurrently with
// another.
func New[ID, OP comparable](deps *graph.DAG[OP], config Config) *Graphs[ID, OP] {
	g := &Graphs[ID, OP]{
		deps:        deps,
		removals:    make(map[ID][]removal[ID, OP]),
		delegations: make(map[ID][]delegation[ID, OP]),
		built:       make(map[ID]*builtGraph[ID, OP]),
		cycles:      make(map[ID]map[OP]struct{}),
	}
	if config.LoggerFactory != nil {
		g.log = config.LoggerFactory.NewLogger("authority")
	}
	return g
}

// AddRemoval registers that remover removed removed from groupID via
// op. A self-removal is a no-op: an actor cannot be in a cycle with
// itself.
func (g *Graphs[ID, OP]) AddRemoval(groupID, remover, removed ID, op OP) {
	if remover == removed {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.removals[groupID] = append(g.removals[groupID], removal[ID, OP]{remover, removed, op})
	delete(g.built, groupID)
	delete(g.cycles, groupID)
}

// AddDelegation registers that delegator delegated authority to
// delegate in groupID via op.
func (g *Graphs[ID, OP]) AddDelegation(groupID, delegator, delegate ID, op OP) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.delegations[groupID] = append(g.delegations[groupID], delegation[ID, OP]{delegator, delegate, op})
	delete(g.built, groupID)
	delete(g.cycles, groupID)
}

// IsCycle reports whether targetOp participates in a mutual-remove
// cycle within groupID.
func (g *Graphs[ID, OP]) IsCycle(groupID ID, targetOp OP) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.built[groupID]; !ok {
		g.buildGraphLocked(groupID)
		g.computeCyclesLocked(groupID)
	}

	set, ok := g.cycles[groupID]
	if !ok {
		return false
	}
	_, inCycle := set[targetOp]
	return inCycle
}

// Cycles returns the set of mutual-remove cycles detected in groupID,
// each as the distinct operation ids participating in that cycle. Used
// by callers that need to pick a tie-break winner within a cycle, not
// just know whether one exists.
func (g *Graphs[ID, OP]) Cycles(groupID ID) [][]OP {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.built[groupID]; !ok {
		g.buildGraphLocked(groupID)
		g.computeCyclesLocked(groupID)
	}

	bg, ok := g.built[groupID]
	if !ok {
		return nil
	}

	sccs := graph.TarjanSCC(bg.nodes, bg.adjacency)
	var out [][]OP
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		seen := make(map[OP]struct{})
		var ops []OP
		for _, n := range scc {
			if _, ok := seen[n.op]; !ok {
				seen[n.op] = struct{}{}
				ops = append(ops, n.op)
			}
		}
		out = append(out, ops)
	}
	return out
}

func (g *Graphs[ID, OP]) buildGraphLocked(groupID ID) {
	removals := g.removals[groupID]
	delegations := g.delegations[groupID]
	if len(removals) == 0 && len(delegations) == 0 {
		return
	}

	bg := &builtGraph[ID, OP]{adjacency: make(map[node[ID, OP]][]node[ID, OP])}
	seen := make(map[node[ID, OP]]struct{})

	ensure := func(n node[ID, OP]) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		bg.nodes = append(bg.nodes, n)
	}
	addEdge := func(from, to node[ID, OP]) {
		ensure(from)
		ensure(to)
		for _, existing := range bg.adjacency[from] {
			if existing == to {
				return
			}
		}
		bg.adjacency[from] = append(bg.adjacency[from], to)
	}

	for _, r := range removals {
		addEdge(node[ID, OP]{r.remover, r.op}, node[ID, OP]{r.removed, r.op})
	}
	for _, d := range delegations {
		addEdge(node[ID, OP]{d.delegator, d.op}, node[ID, OP]{d.delegate, d.op})
	}

	for _, r := range removals {
		for _, r2 := range removals {
			if !g.deps.IsConcurrent(r.op, r2.op) {
				continue
			}
			if r.removed == r2.remover {
				addEdge(node[ID, OP]{r.removed, r.op}, node[ID, OP]{r2.remover, r2.op})
			}
			if r2.removed == r.remover {
				addEdge(node[ID, OP]{r2.removed, r2.op}, node[ID, OP]{r.remover, r.op})
			}
		}
	}

	if len(removals) > 0 && len(delegations) > 0 {
		for _, d := range delegations {
			for _, r := range removals {
				isConnected := g.deps.HasPath(d.op, r.op)
				isConcurrent := g.deps.IsConcurrent(r.op, d.op)

				if r.removed == d.delegator && isConcurrent {
					addEdge(node[ID, OP]{r.removed, r.op}, node[ID, OP]{d.delegator, d.op})
				}
				if d.delegate == r.remover && isConnected {
					addEdge(node[ID, OP]{d.delegate, d.op}, node[ID, OP]{r.remover, r.op})
				}
			}

			for _, d2 := range delegations {
				isConnected := g.deps.HasPath(d.op, d2.op)
				if d.delegate == d2.delegator && isConnected {
					addEdge(node[ID, OP]{d.delegate, d.op}, node[ID, OP]{d2.delegator, d2.op})
				}
			}
		}
	}

	g.built[groupID] = bg
}

func (g *Graphs[ID, OP]) computeCyclesLocked(groupID ID) {
	bg, ok := g.built[groupID]
	if !ok {
		g.cycles[groupID] = make(map[OP]struct{})
		return
	}

	sccs := graph.TarjanSCC(bg.nodes, bg.adjacency)
	opsInCycles := make(map[OP]struct{})
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		for _, n := range scc {
			opsInCycles[n.op] = struct{}{}
		}
	}
	g.cycles[groupID] = opsInCycles

	if g.log != nil && len(opsInCycles) > 0 {
		g.log.Debugf("authority: mutual-remove cycle detected")
	}
}
