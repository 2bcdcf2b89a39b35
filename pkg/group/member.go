package group

import (
	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/ids"
)

// MemberState is one member's entry in a group's members state. Both
// counters only ever increase, which is what makes Merge commutative
// and associative: the larger counter always wins regardless of which
// order two concurrent states are merged in.
type MemberState struct {
	Member ids.Identity

	// MemberCounter toggles membership: odd means the member is
	// currently present, even (including zero) means removed. It is
	// incremented on every Add or Remove of this member.
	MemberCounter uint64

	Access access.Access

	// AccessCounter is incremented on every Promote or Demote of this
	// member, so the most recent access change always wins a merge.
	AccessCounter uint64
}

// IsMember reports whether the member is currently present.
func (m MemberState) IsMember() bool {
	return m.MemberCounter%2 == 1
}

// MembersState is a group's full membership snapshot, keyed by member
// identity.
type MembersState struct {
	Members map[ids.Identity]MemberState
}

// Empty returns a members state with no members.
func Empty() MembersState {
	return MembersState{Members: make(map[ids.Identity]MemberState)}
}

// MemberList returns the (identity, access) pairs of members currently
// present, in no particular order.
func (s MembersState) MemberList() []InitialMember {
	out := make([]InitialMember, 0, len(s.Members))
	for _, m := range s.Members {
		if m.IsMember() {
			out = append(out, InitialMember{Member: m.Member, Access: m.Access})
		}
	}
	return out
}

// Get returns the stored state for id, if any.
func (s MembersState) Get(id ids.Identity) (MemberState, bool) {
	m, ok := s.Members[id]
	return m, ok
}

// Merge combines two members states into one. For every member present
// in either input, the entry with the higher MemberCounter wins; if
// those tie, the entry with the higher AccessCounter wins; if those
// also tie, the entry with the higher Access wins. This total order
// over entries is what makes Merge commutative and associative: the
// result never depends on which side is "a" and which is "b", or on how
// a larger merge is associated.
func Merge(a, b MembersState) MembersState {
	out := Empty()
	for id, m := range a.Members {
		out.Members[id] = m
	}
	for id, m := range b.Members {
		existing, ok := out.Members[id]
		if !ok {
			out.Members[id] = m
			continue
		}
		out.Members[id] = mergeMemberState(existing, m)
	}
	return out
}

func mergeMemberState(a, b MemberState) MemberState {
	if a.MemberCounter != b.MemberCounter {
		if a.MemberCounter > b.MemberCounter {
			return a
		}
		return b
	}
	if a.AccessCounter != b.AccessCounter {
		if a.AccessCounter > b.AccessCounter {
			return a
		}
		return b
	}
	if a.Access >= b.Access {
		return a
	}
	return b
}

// computeNextState applies action, authored by actor, to y and returns
// the resulting members state.
func computeNextState(y MembersState, actor ids.Identity, action GroupAction) (MembersState, error) {
	if action.Kind == ActionCreate {
		members := make(map[ids.Identity]MemberState, len(action.InitialMembers))
		for _, m := range action.InitialMembers {
			members[m.Member] = MemberState{
				Member:        m.Member,
				MemberCounter: 1,
				Access:        m.Access,
				AccessCounter: 0,
			}
		}
		return MembersState{Members: members}, nil
	}

	actorState, ok := y.Get(actor)
	if !ok || !actorState.IsMember() {
		return y, ErrNotAuthorized
	}
	if !actorState.Access.Grants(access.Manage) {
		return y, ErrNotAuthorized
	}

	out := Empty()
	for id, m := range y.Members {
		out.Members[id] = m
	}

	switch action.Kind {
	case ActionAdd:
		existing, ok := out.Members[action.Member]
		if ok {
			existing.MemberCounter++
			existing.Access = action.Access
			out.Members[action.Member] = existing
		} else {
			out.Members[action.Member] = MemberState{
				Member:        action.Member,
				MemberCounter: 1,
				Access:        action.Access,
			}
		}
	case ActionRemove:
		existing, ok := out.Members[action.Member]
		if !ok {
			return y, ErrUnknownMember
		}
		existing.MemberCounter++
		out.Members[action.Member] = existing
	case ActionPromote, ActionDemote:
		existing, ok := out.Members[action.Member]
		if !ok {
			return y, ErrUnknownMember
		}
		existing.Access = action.Access
		existing.AccessCounter++
		out.Members[action.Member] = existing
	default:
		return y, ErrInvalidAction
	}

	return out, nil
}
