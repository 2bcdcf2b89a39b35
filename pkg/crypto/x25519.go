package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
)

// X25519KeySize is the byte length of an X25519 public or private key.
const X25519KeySize = 32

// X25519KeyPair is a Diffie-Hellman key pair on Curve25519, used for
// ephemeral and pre-key exchange in the handshake that establishes a
// group member's welcome secret.
type X25519KeyPair struct {
	Private [X25519KeySize]byte
	Public  [X25519KeySize]byte
}

// GenerateX25519KeyPair creates a new random X25519 key pair.
func GenerateX25519KeyPair() (X25519KeyPair, error) {
	var kp X25519KeyPair
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return kp, err
	}
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return kp, err
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

// X25519 performs a Diffie-Hellman scalar multiplication, producing the
// shared secret between a local private key and a remote public key.
func X25519(private, public [X25519KeySize]byte) ([]byte, error) {
	return curve25519.X25519(private[:], public[:])
}
