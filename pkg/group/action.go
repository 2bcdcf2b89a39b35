package group

import (
	"encoding/binary"
	"sort"

	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/ids"
)

// ActionKind identifies the kind of change a GroupAction makes to
// membership state.
type ActionKind uint8

const (
	ActionCreate ActionKind = iota
	ActionAdd
	ActionRemove
	ActionPromote
	ActionDemote
)

// String implements fmt.Stringer.
func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionPromote:
		return "promote"
	case ActionDemote:
		return "demote"
	default:
		return "unknown"
	}
}

// InitialMember is a (member, access) pair seeding a new group.
type InitialMember struct {
	Member ids.Identity
	Access access.Access
}

// GroupAction is a single change a group member can propose.
type GroupAction struct {
	Kind ActionKind

	// Member and Access apply to Add, Remove, Promote and Demote.
	// Remove only reads Member.
	Member ids.Identity
	Access access.Access

	// InitialMembers applies only to Create.
	InitialMembers []InitialMember
}

// IsCreate reports whether the action is a Create.
func (a GroupAction) IsCreate() bool {
	return a.Kind == ActionCreate
}

// ControlMessage is the payload of an operation processed by a group.
// Exactly one of Action or Revoke is set.
type ControlMessage struct {
	Action *GroupAction
	Revoke *ids.OperationID
}

// NewActionMessage wraps a GroupAction as a control message.
func NewActionMessage(action GroupAction) ControlMessage {
	return ControlMessage{Action: &action}
}

// NewRevokeMessage wraps a revocation of id as a control message.
func NewRevokeMessage(id ids.OperationID) ControlMessage {
	return ControlMessage{Revoke: &id}
}

// Operation is a single node in the group's operation DAG: a control
// message, the identity that authored it, and the prior operations it
// causally depends on.
type Operation struct {
	ID           ids.OperationID
	Sender       ids.Identity
	Dependencies []ids.OperationID
	Payload      ControlMessage
}

// ComputeOperationID derives the content-addressed id of an operation
// authored by sender, depending on dependencies, carrying payload. The
// encoding is canonical (dependencies sorted) so that the same logical
// operation always hashes to the same id regardless of how its
// dependency set was assembled.
func ComputeOperationID(sender ids.Identity, dependencies []ids.OperationID, payload ControlMessage) ids.OperationID {
	return ids.NewOperationID(sender, canonicalEncode(dependencies, payload))
}

func canonicalEncode(dependencies []ids.OperationID, payload ControlMessage) []byte {
	sorted := append([]ids.OperationID(nil), dependencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var buf []byte
	for _, dep := range sorted {
		buf = append(buf, dep.Bytes()...)
	}

	if payload.Action != nil {
		a := payload.Action
		buf = append(buf, 0x01, byte(a.Kind), byte(a.Access))
		buf = append(buf, a.Member.Bytes()...)
		count := make([]byte, 4)
		binary.BigEndian.PutUint32(count, uint32(len(a.InitialMembers)))
		buf = append(buf, count...)
		for _, m := range a.InitialMembers {
			buf = append(buf, m.Member.Bytes()...)
			buf = append(buf, byte(m.Access))
		}
		return buf
	}

	buf = append(buf, 0x02)
	buf = append(buf, payload.Revoke.Bytes()...)
	return buf
}
