package store

import (
	"sort"
	"sync"

	"github.com/backkem/groupcore/pkg/graph"
	"github.com/backkem/groupcore/pkg/group"
	"github.com/backkem/groupcore/pkg/ids"
)

// GroupID identifies a group by the operation id of its Create: a
// group's identity is content-addressed by its own root, so no
// separate group-naming scheme is needed.
type GroupID = ids.OperationID

// OperationStore persists a group's operation log and answers the
// queries the causal orderer and resolver need: whether an operation is
// already known, what the current heads are, and a topological
// iteration order for rebuilds.
type OperationStore interface {
	// Append stores op under groupID. Appending an already-stored
	// operation id is a no-op.
	Append(groupID GroupID, op group.Operation) error

	// Get returns the stored operation, or ok=false if groupID has no
	// such operation.
	Get(groupID GroupID, id ids.OperationID) (op group.Operation, ok bool, err error)

	// Has reports whether id has been appended under groupID.
	Has(groupID GroupID, id ids.OperationID) (bool, error)

	// Heads returns the tips of groupID's operation DAG: operations
	// nothing else depends on.
	Heads(groupID GroupID) ([]ids.OperationID, error)

	// Topological returns every operation appended under groupID in an
	// order consistent with its dependency DAG.
	Topological(groupID GroupID) ([]group.Operation, error)
}

// MemoryOperationStore is an in-memory OperationStore for tests and
// single-process deployments.
type MemoryOperationStore struct {
	mu    sync.RWMutex
	ops   map[GroupID]map[ids.OperationID]group.Operation
	graph map[GroupID]*graph.DAG[ids.OperationID]
}

// NewMemoryOperationStore creates an empty MemoryOperationStore.
func NewMemoryOperationStore() *MemoryOperationStore {
	return &MemoryOperationStore{
		ops:   make(map[GroupID]map[ids.OperationID]group.Operation),
		graph: make(map[GroupID]*graph.DAG[ids.OperationID]),
	}
}

func (s *MemoryOperationStore) groupLocked(groupID GroupID) (map[ids.OperationID]group.Operation, *graph.DAG[ids.OperationID]) {
	ops, ok := s.ops[groupID]
	if !ok {
		ops = make(map[ids.OperationID]group.Operation)
		s.ops[groupID] = ops
	}
	dag, ok := s.graph[groupID]
	if !ok {
		dag = graph.New[ids.OperationID]()
		s.graph[groupID] = dag
	}
	return ops, dag
}

// Append stores op under groupID. Appending an already-stored operation
// id is a no-op.
func (s *MemoryOperationStore) Append(groupID GroupID, op group.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, dag := s.groupLocked(groupID)
	if _, exists := ops[op.ID]; exists {
		return nil
	}
	ops[op.ID] = op
	dag.AddNode(op.ID)
	for _, dep := range op.Dependencies {
		dag.AddEdge(dep, op.ID)
	}
	return nil
}

// Get returns the stored operation, or ok=false if groupID has no such
// operation.
func (s *MemoryOperationStore) Get(groupID GroupID, id ids.OperationID) (group.Operation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops, ok := s.ops[groupID]
	if !ok {
		return group.Operation{}, false, nil
	}
	op, ok := ops[id]
	return op, ok, nil
}

// Has reports whether id has been appended under groupID.
func (s *MemoryOperationStore) Has(groupID GroupID, id ids.OperationID) (bool, error) {
	_, ok, err := s.Get(groupID, id)
	return ok, err
}

// Heads returns the tips of groupID's operation DAG.
func (s *MemoryOperationStore) Heads(groupID GroupID) ([]ids.OperationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dag, ok := s.graph[groupID]
	if !ok {
		return nil, nil
	}
	return dag.Sinks(), nil
}

// Topological returns every operation appended under groupID in an
// order consistent with its dependency DAG, breaking ties
// deterministically by operation id.
func (s *MemoryOperationStore) Topological(groupID GroupID) ([]group.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops, ok := s.ops[groupID]
	if !ok {
		return nil, nil
	}
	dag := s.graph[groupID]

	indegree := make(map[ids.OperationID]int, len(ops))
	for id := range ops {
		indegree[id] = 0
	}
	for _, op := range ops {
		for _, dep := range op.Dependencies {
			if _, ok := ops[dep]; ok {
				indegree[op.ID]++
			}
		}
	}

	var ready []ids.OperationID
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}

	var order []group.Operation
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })
		next := ready[0]
		ready = ready[1:]
		order = append(order, ops[next])

		for _, succ := range dag.Successors(next) {
			if _, ok := indegree[succ]; !ok {
				continue
			}
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(ops) {
		return nil, ErrCyclicOperationGraph
	}
	return order, nil
}
