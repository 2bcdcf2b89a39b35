package group

import (
	"sort"

	"github.com/pion/logging"

	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/authority"
	"github.com/backkem/groupcore/pkg/graph"
	"github.com/backkem/groupcore/pkg/ids"
)

// authorityKey is the sole key used with authority.Graphs: a group.State
// always represents exactly one group, so there is nothing to
// distinguish between groups at this layer.
type authorityKey struct{}

// Config configures a new State.
type Config struct {
	LoggerFactory logging.LoggerFactory
}

// State is a group's full processing state: the members snapshot at
// every position in its operation DAG, the DAG itself, and the set of
// operations whose action is ignored because it was found to
// participate in a mutual-remove cycle.
type State struct {
	MyID ids.Identity

	states     map[ids.OperationID]MembersState
	operations map[ids.OperationID]Operation
	ignore     map[ids.OperationID]struct{}
	deps       *graph.DAG[ids.OperationID]
	authority  *authority.Graphs[authorityKey, ids.OperationID]

	log logging.LeveledLogger
}

// New creates an empty group processing state for myID.
func New(myID ids.Identity, config Config) *State {
	deps := graph.New[ids.OperationID]()
	s := &State{
		MyID:       myID,
		states:     make(map[ids.OperationID]MembersState),
		operations: make(map[ids.OperationID]Operation),
		ignore:     make(map[ids.OperationID]struct{}),
		deps:       deps,
		authority:  authority.New[authorityKey, ids.OperationID](deps, authority.Config{LoggerFactory: config.LoggerFactory}),
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("group")
	}
	return s
}

// Heads returns the tips of the operation DAG: operations nothing has
// yet been built on top of.
func (s *State) Heads() []ids.OperationID {
	return s.deps.Sinks()
}

// CurrentState merges the members state at every head into one.
func (s *State) CurrentState() MembersState {
	heads := s.Heads()
	current := Empty()
	for _, h := range heads {
		st, ok := s.states[h]
		if !ok {
			continue
		}
		current = Merge(st, current)
	}
	return current
}

// StateAt merges the members states recorded at each of operations,
// which must all have already been processed.
func (s *State) StateAt(operations []ids.OperationID) (MembersState, error) {
	y := Empty()
	for _, id := range operations {
		st, ok := s.states[id]
		if !ok {
			return MembersState{}, ErrUnknownDependency
		}
		y = Merge(st, y)
	}
	return y, nil
}

// Members returns the group's current members and their access level.
func (s *State) Members() []InitialMember {
	return s.CurrentState().MemberList()
}

// Process applies operation to the group, validating the acting
// member's authority and recomputing membership state. If the operation
// is a revocation, or it newly closes a mutual-remove cycle, the entire
// operation set is rebuilt from scratch so the ignore set stays
// consistent.
func (s *State) Process(operation Operation) error {
	if s.rebuildRequired(operation) {
		return s.addWithRebuild([]Operation{operation})
	}

	if operation.Payload.Action != nil {
		action := *operation.Payload.Action
		if action.IsCreate() && len(operation.Dependencies) != 0 {
			return ErrCreateMustBeRoot
		}

		var membersY MembersState
		if len(operation.Dependencies) == 0 {
			membersY = Empty()
		} else {
			var err error
			membersY, err = s.StateAt(operation.Dependencies)
			if err != nil {
				return err
			}
		}

		membersYI, err := computeNextState(membersY, operation.Sender, action)
		if err == ErrNotAuthorized {
			// An unauthorized sender doesn't get rejected outright: the
			// operation still takes its place in the DAG, it just never
			// affects membership.
			s.ignore[operation.ID] = struct{}{}
			membersYI = membersY
		} else if err != nil {
			return err
		}

		if _, ignored := s.ignore[operation.ID]; !ignored {
			s.states[operation.ID] = membersYI
		} else {
			s.states[operation.ID] = membersY
		}
	}

	s.deps.AddNode(operation.ID)
	for _, previous := range operation.Dependencies {
		s.deps.AddEdge(previous, operation.ID)
	}
	s.operations[operation.ID] = operation

	return nil
}

// rebuildRequired reports whether operation's arrival requires
// recomputing the whole ignore set: always true for a revocation, and
// true for a removal, or a Manage-level Add or Promote (a delegation),
// that the authority graph now finds to be part of a cycle.
func (s *State) rebuildRequired(operation Operation) bool {
	if operation.Payload.Revoke != nil {
		return true
	}

	action := operation.Payload.Action
	if action == nil {
		return false
	}

	switch action.Kind {
	case ActionRemove:
		s.authority.AddRemoval(authorityKey{}, operation.Sender, action.Member, operation.ID)
		return s.authority.IsCycle(authorityKey{}, operation.ID)
	case ActionAdd, ActionPromote:
		if action.Access == access.Manage {
			s.authority.AddDelegation(authorityKey{}, operation.Sender, action.Member, operation.ID)
			if s.authority.IsCycle(authorityKey{}, operation.ID) {
				return true
			}
		}
	}
	return false
}

// addWithRebuild adds newOperations to the operation set, recomputes the
// ignore set from the full authority graph, and replays every operation
// in topological order to recompute every position's members state.
func (s *State) addWithRebuild(newOperations []Operation) error {
	for _, op := range newOperations {
		s.deps.AddNode(op.ID)
		s.operations[op.ID] = op
	}
	for id, op := range s.operations {
		for _, previous := range op.Dependencies {
			s.deps.AddEdge(previous, id)
		}
	}

	if err := s.rebuildIgnoreSet(); err != nil {
		return err
	}

	order, err := s.topoSort()
	if err != nil {
		return err
	}

	s.states = make(map[ids.OperationID]MembersState)
	for _, id := range order {
		op, ok := s.operations[id]
		if !ok {
			return ErrUnknownOperation
		}
		if op.Payload.Revoke != nil {
			continue
		}
		action := op.Payload.Action
		if action == nil {
			return ErrInvalidAction
		}
		if action.IsCreate() && len(op.Dependencies) != 0 {
			return ErrCreateMustBeRoot
		}

		var membersY MembersState
		if len(op.Dependencies) == 0 {
			membersY = Empty()
		} else {
			membersY, err = s.StateAt(op.Dependencies)
			if err != nil {
				return err
			}
		}

		membersYI, err := computeNextState(membersY, op.Sender, *action)
		if err == ErrNotAuthorized {
			s.ignore[id] = struct{}{}
			membersYI = membersY
		} else if err != nil {
			return err
		}

		if _, ignored := s.ignore[id]; !ignored {
			s.states[id] = membersYI
		} else {
			s.states[id] = membersY
		}
	}

	return nil
}

// rebuildIgnoreSet recomputes the operations to ignore: for every
// mutual-remove cycle the authority graph reports, the removal with the
// lexicographically smallest operation id is ignored, breaking the
// cycle while letting every other removal in it take effect.
func (s *State) rebuildIgnoreSet() error {
	s.ignore = make(map[ids.OperationID]struct{})

	for _, op := range s.operations {
		if op.Payload.Revoke != nil {
			if op.Payload.Action != nil {
				return ErrInvalidAction
			}
			if original, ok := s.operations[*op.Payload.Revoke]; ok {
				if original.Payload.Action != nil && original.Payload.Action.IsCreate() {
					return ErrRevokeOfCreate
				}
			}
			s.ignore[*op.Payload.Revoke] = struct{}{}
		}
	}

	for _, cycle := range s.authority.Cycles(authorityKey{}) {
		if len(cycle) == 0 {
			continue
		}
		min := cycle[0]
		for _, op := range cycle[1:] {
			if op.Less(min) {
				min = op
			}
		}
		s.ignore[min] = struct{}{}
	}

	return nil
}

// topoSort returns every processed operation id in an order consistent
// with the dependency DAG: every operation after all of its
// dependencies.
func (s *State) topoSort() ([]ids.OperationID, error) {
	indegree := make(map[ids.OperationID]int, len(s.operations))
	for id := range s.operations {
		indegree[id] = 0
	}
	for _, op := range s.operations {
		for _, dep := range op.Dependencies {
			if _, ok := s.operations[dep]; ok {
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
	sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })

	var order []ids.OperationID
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].Less(ready[j]) })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, succ := range s.deps.Successors(next) {
			if _, ok := indegree[succ]; !ok {
				continue
			}
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(s.operations) {
		return nil, ErrUnknownOperation
	}
	return order, nil
}
