package store

import (
	"github.com/backkem/groupcore/pkg/group"
	"github.com/backkem/groupcore/pkg/ids"
)

// ForgeArgs names what an outgoing operation needs: who sends it, what
// it causally depends on, and the control message it carries. The
// resulting id is content-addressed (group.ComputeOperationID), so
// "signing" an operation in this implementation means nothing more than
// computing that id deterministically from its authenticated sender —
// per-operation authenticity rides on the transport layer that delivers
// it, not on a detachable signature field.
type ForgeArgs struct {
	Sender       ids.Identity
	Dependencies []ids.OperationID
	Payload      group.ControlMessage
}

// MessageForge builds outgoing operations ready to append to the local
// operation store and broadcast to the group.
type MessageForge interface {
	Forge(args ForgeArgs) (group.Operation, error)
}

// DefaultForge is the straightforward MessageForge: it content-addresses
// the operation from its sender, dependencies and payload.
type DefaultForge struct{}

// Forge builds an Operation from args.
func (DefaultForge) Forge(args ForgeArgs) (group.Operation, error) {
	id := group.ComputeOperationID(args.Sender, args.Dependencies, args.Payload)
	return group.Operation{
		ID:           id,
		Sender:       args.Sender,
		Dependencies: args.Dependencies,
		Payload:      args.Payload,
	}, nil
}
