package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/backkem/groupcore/pkg/access"
	"github.com/backkem/groupcore/pkg/group"
	"github.com/backkem/groupcore/pkg/ids"
)

// controlKind discriminates the ControlMessage tagged union on the
// wire. Values are stable: changing them breaks compatibility with
// already-encoded operations.
type controlKind uint8

const (
	controlKindCreate controlKind = iota
	controlKindAdd
	controlKindRemove
	controlKindPromote
	controlKindDemote
	controlKindRevoke
)

// WireInitialMember is a (member, access) pair as carried by a Create
// control message.
type WireInitialMember struct {
	Member []byte `cbor:"member"`
	Access uint8  `cbor:"access"`
}

// WireControlMessage is the CBOR encoding of group.ControlMessage: a
// tagged union over Create, Add, Remove, Promote, Demote and Revoke,
// discriminated by Kind.
type WireControlMessage struct {
	Kind           controlKind         `cbor:"kind"`
	Member         []byte              `cbor:"member,omitempty"`
	Access         uint8               `cbor:"access,omitempty"`
	InitialMembers []WireInitialMember `cbor:"initial_members,omitempty"`
	Revoke         []byte              `cbor:"revoke,omitempty"`
}

// EncodeControlMessage returns the canonical CBOR encoding of msg.
func EncodeControlMessage(msg group.ControlMessage) ([]byte, error) {
	wired, err := controlMessageToWire(msg)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(wired)
}

// DecodeControlMessage parses the CBOR encoding produced by
// EncodeControlMessage.
func DecodeControlMessage(data []byte) (group.ControlMessage, error) {
	var wired WireControlMessage
	if err := cbor.Unmarshal(data, &wired); err != nil {
		return group.ControlMessage{}, err
	}
	return controlMessageFromWire(wired)
}

func controlMessageToWire(msg group.ControlMessage) (WireControlMessage, error) {
	if msg.Revoke != nil {
		return WireControlMessage{Kind: controlKindRevoke, Revoke: msg.Revoke.Bytes()}, nil
	}
	if msg.Action == nil {
		return WireControlMessage{}, ErrEmptyControlMessage
	}

	a := msg.Action
	wired := WireControlMessage{Member: a.Member.Bytes(), Access: uint8(a.Access)}
	switch a.Kind {
	case group.ActionCreate:
		wired.Kind = controlKindCreate
		wired.Member = nil
		wired.Access = 0
		wired.InitialMembers = make([]WireInitialMember, 0, len(a.InitialMembers))
		for _, m := range a.InitialMembers {
			wired.InitialMembers = append(wired.InitialMembers, WireInitialMember{
				Member: m.Member.Bytes(),
				Access: uint8(m.Access),
			})
		}
	case group.ActionAdd:
		wired.Kind = controlKindAdd
	case group.ActionRemove:
		wired.Kind = controlKindRemove
		wired.Access = 0
	case group.ActionPromote:
		wired.Kind = controlKindPromote
	case group.ActionDemote:
		wired.Kind = controlKindDemote
	default:
		return WireControlMessage{}, ErrUnknownControlKind
	}
	return wired, nil
}

func controlMessageFromWire(wired WireControlMessage) (group.ControlMessage, error) {
	if wired.Kind == controlKindRevoke {
		id, err := ids.OperationIDFromBytes(wired.Revoke)
		if err != nil {
			return group.ControlMessage{}, err
		}
		return group.NewRevokeMessage(id), nil
	}

	var member ids.Identity
	var err error
	if len(wired.Member) != 0 {
		member, err = ids.IdentityFromBytes(wired.Member)
		if err != nil {
			return group.ControlMessage{}, err
		}
	}

	action := group.GroupAction{Member: member, Access: access.Access(wired.Access)}
	switch wired.Kind {
	case controlKindCreate:
		action.Kind = group.ActionCreate
		action.InitialMembers = make([]group.InitialMember, 0, len(wired.InitialMembers))
		for _, m := range wired.InitialMembers {
			id, err := ids.IdentityFromBytes(m.Member)
			if err != nil {
				return group.ControlMessage{}, err
			}
			action.InitialMembers = append(action.InitialMembers, group.InitialMember{
				Member: id,
				Access: access.Access(m.Access),
			})
		}
	case controlKindAdd:
		action.Kind = group.ActionAdd
	case controlKindRemove:
		action.Kind = group.ActionRemove
	case controlKindPromote:
		action.Kind = group.ActionPromote
	case controlKindDemote:
		action.Kind = group.ActionDemote
	default:
		return group.ControlMessage{}, ErrUnknownControlKind
	}
	return group.NewActionMessage(action), nil
}
