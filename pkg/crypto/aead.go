package crypto

import (
	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD key, nonce, and tag sizes for the XChaCha20-Poly1305 construction
// used to wrap direct messages and ratchet-encrypted payloads.
const (
	// AEADKeySize is the symmetric key size in bytes.
	AEADKeySize = chacha20poly1305.KeySize

	// AEADNonceSize is the extended nonce size in bytes (XChaCha20's 24-byte
	// nonce, large enough to be chosen at random without collision risk).
	AEADNonceSize = chacha20poly1305.NonceSizeX

	// AEADTagSize is the Poly1305 authentication tag size in bytes.
	AEADTagSize = chacha20poly1305.Overhead
)

// Seal encrypts and authenticates plaintext under key and nonce, binding
// aad as associated data. Returns ciphertext || tag.
func Seal(key Secret, nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != AEADNonceSize {
		return nil, ErrInvalidNonceSize
	}
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open verifies and decrypts ciphertext (as produced by Seal) under key
// and nonce, checking it against aad. Returns ErrAuthFailed if the tag does
// not verify.
func Open(key Secret, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != AEADNonceSize {
		return nil, ErrInvalidNonceSize
	}
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
