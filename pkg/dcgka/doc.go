// Package dcgka implements the decentralized continuous group key
// agreement state machine: it turns membership actions (create, add,
// remove, update) into a group control message plus the direct
// messages needed to deliver fresh secrets to the members who need
// them, and processes inbound messages from other peers, recovering
// and storing any secret addressed to the local identity.
//
// A direct message is sealed with an X3DH-style handshake: an ephemeral
// X25519 key agreed against the recipient's long-term (and, if
// available, one-time) pre-key, the resulting shared secret run through
// HKDF to derive an AEAD key. The recipient's pre-key was already
// authenticated by its Ed25519 signature when it was accepted into the
// key registry (pkg/registry), so the handshake itself only needs the
// ephemeral DH exchange, not a second live signature.
package dcgka
