// Package ids defines the identifier types shared across the group
// membership, authority graph, secret bundle, and DCGKA packages: member
// identities and content-addressed operation/message identifiers.
package ids

import (
	"bytes"
	"encoding/hex"

	"github.com/backkem/groupcore/pkg/crypto"
)

// IdentitySize is the byte length of an Identity (an Ed25519 public key).
const IdentitySize = 32

// Identity identifies a group member by their long-term Ed25519 public key.
type Identity [IdentitySize]byte

// IdentityFromBytes copies b into an Identity. b must be exactly
// IdentitySize bytes.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentitySize {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns a copy of the identity as a slice.
func (id Identity) Bytes() []byte {
	out := make([]byte, IdentitySize)
	copy(out, id[:])
	return out
}

// Less reports whether id sorts before other in the canonical
// lexicographic ordering used for deterministic tie-breaking.
func (id Identity) Less(other Identity) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// String returns the hex encoding of the identity, for logging.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// OperationIDSize is the byte length of an OperationID (a BLAKE3 digest).
const OperationIDSize = crypto.BLAKE3LenBytes

// OperationID content-addresses a single group operation: the BLAKE3
// digest of its author, dependency set, and control-message payload.
// Because the identifier is derived from content, it is stable across
// peers and cannot be forged to create a dependency cycle.
type OperationID [OperationIDSize]byte

// NewOperationID derives an OperationID from an author and the canonical
// encoding of an operation's dependencies and payload.
func NewOperationID(author Identity, encoded []byte) OperationID {
	h := crypto.NewBLAKE3()
	h.Write(author[:])
	h.Write(encoded)
	var id OperationID
	copy(id[:], h.Sum(nil))
	return id
}

// OperationIDFromBytes copies b into an OperationID. b must be exactly
// OperationIDSize bytes.
func OperationIDFromBytes(b []byte) (OperationID, error) {
	var id OperationID
	if len(b) != OperationIDSize {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns a copy of the operation ID as a slice.
func (id OperationID) Bytes() []byte {
	out := make([]byte, OperationIDSize)
	copy(out, id[:])
	return out
}

// Less reports whether id sorts before other lexicographically. Used by
// the authority graph resolver to pick a deterministic operation to
// ignore out of a detected mutual-removal cycle.
func (id OperationID) Less(other OperationID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// String returns the hex encoding of the operation ID, for logging.
func (id OperationID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero value.
func (id OperationID) IsZero() bool {
	return id == OperationID{}
}

// MessageIDSize is the byte length of a MessageID.
const MessageIDSize = crypto.BLAKE3LenBytes

// MessageID content-addresses a DCGKA direct or application message;
// pkg/wire encodes and decodes it.
type MessageID [MessageIDSize]byte

// NewMessageID derives a MessageID from the BLAKE3 digest of encoded.
func NewMessageID(encoded []byte) MessageID {
	var id MessageID
	d := crypto.BLAKE3(encoded)
	copy(id[:], d[:])
	return id
}

// MessageIDFromBytes copies b into a MessageID. b must be exactly
// MessageIDSize bytes.
func MessageIDFromBytes(b []byte) (MessageID, error) {
	var id MessageID
	if len(b) != MessageIDSize {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns a copy of the message ID as a slice.
func (id MessageID) Bytes() []byte {
	out := make([]byte, MessageIDSize)
	copy(out, id[:])
	return out
}

// String returns the hex encoding of the message ID, for logging.
func (id MessageID) String() string {
	return hex.EncodeToString(id[:])
}
