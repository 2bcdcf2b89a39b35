// Package crypto provides the cryptographic primitives shared by the
// group-membership, secret-bundle, ratchet, and DCGKA packages: hashing,
// HKDF, X25519 key agreement, Ed25519 signing, and an authenticated cipher
// for wrapping control and direct messages.
package crypto

import (
	"crypto/sha256"
	"hash"

	"lukechampine.com/blake3"
)

// Digest sizes in bytes.
const (
	// SHA256LenBytes is the SHA-256 output length in bytes.
	SHA256LenBytes = 32

	// BLAKE3LenBytes is the BLAKE3 output length in bytes used throughout
	// this module (content-addressed operation and message identifiers).
	BLAKE3LenBytes = 32
)

// SHA256 computes the SHA-256 digest of a message.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Slice computes the SHA-256 digest and returns it as a slice.
func SHA256Slice(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests incrementally.
func NewSHA256() hash.Hash {
	return sha256.New()
}

// BLAKE3 computes the 32-byte BLAKE3 digest of a message. This is the
// digest used to derive content-addressed identifiers for operations,
// messages, and group secrets.
func BLAKE3(message []byte) [BLAKE3LenBytes]byte {
	return blake3.Sum256(message)
}

// BLAKE3Slice computes the BLAKE3 digest and returns it as a slice.
func BLAKE3Slice(message []byte) []byte {
	h := blake3.Sum256(message)
	return h[:]
}

// NewBLAKE3 returns a new hash.Hash for computing BLAKE3 digests incrementally.
func NewBLAKE3() hash.Hash {
	return blake3.New(BLAKE3LenBytes, nil)
}
