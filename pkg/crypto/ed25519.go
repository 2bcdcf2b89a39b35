package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
)

// Ed25519 key and signature sizes in bytes.
const (
	Ed25519PublicKeySize  = ed25519.PublicKeySize
	Ed25519PrivateKeySize = ed25519.PrivateKeySize
	Ed25519SignatureSize  = ed25519.SignatureSize
)

// Ed25519KeyPair is a signing key pair used to authenticate pre-key
// bundles and, by extension, the identity of a group member.
type Ed25519KeyPair struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// GenerateEd25519KeyPair creates a new random Ed25519 signing key pair.
func GenerateEd25519KeyPair() (Ed25519KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Ed25519KeyPair{}, err
	}
	return Ed25519KeyPair{Private: priv, Public: pub}, nil
}

// Sign signs message with the private key.
func Sign(private ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(private, message)
}

// Verify checks sig over message against the public key. Returns
// ErrInvalidSignature if verification fails.
func Verify(public ed25519.PublicKey, message, sig []byte) error {
	if !ed25519.Verify(public, message, sig) {
		return ErrInvalidSignature
	}
	return nil
}
