package crypto

// SecretSize is the byte length of a symmetric secret used throughout the
// ratchet, secret-bundle, and DCGKA packages.
const SecretSize = 32

// Secret is a fixed-size symmetric key or chain secret. It is passed by
// value the way the rest of this module threads state, so callers that
// need to destroy key material should overwrite the value in place rather
// than rely on garbage collection.
type Secret [SecretSize]byte

// Zero overwrites s with zero bytes.
func (s *Secret) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Bytes returns a copy of the secret as a slice.
func (s Secret) Bytes() []byte {
	out := make([]byte, SecretSize)
	copy(out, s[:])
	return out
}

// SecretFromBytes copies b into a Secret. b must be exactly SecretSize bytes.
func SecretFromBytes(b []byte) (Secret, error) {
	var s Secret
	if len(b) != SecretSize {
		return s, ErrInvalidKeySize
	}
	copy(s[:], b)
	return s, nil
}
